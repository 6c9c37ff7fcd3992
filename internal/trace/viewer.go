package trace

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

const viewerPage = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Loreweave Trace Viewer</title>
    <style>
      body { font-family: Arial, sans-serif; margin: 16px; background: #0f172a; color: #e2e8f0; }
      h1 { font-size: 18px; margin-bottom: 12px; }
      .event { background: #1e293b; border: 1px solid #334155; padding: 12px; margin-bottom: 12px; border-radius: 8px; }
      .stage { font-weight: bold; color: #38bdf8; }
      .time { color: #94a3b8; font-size: 12px; }
      pre { white-space: pre-wrap; word-break: break-word; background: #0b1220; padding: 8px; border-radius: 6px; }
    </style>
  </head>
  <body>
    <h1>Loreweave Trace Viewer</h1>
    <div id="events"></div>
    <script>
      let lastId = 0;
      const eventsEl = document.getElementById("events");

      function renderEvent(event) {
        const wrapper = document.createElement("div");
        wrapper.className = "event";
        const time = new Date(event.timestamp * 1000).toLocaleTimeString();
        wrapper.innerHTML = ` + "`" + `
          <div class="stage">${event.stage}</div>
          <div class="time">${time}</div>
          <pre>${JSON.stringify(event.state, null, 2)}</pre>
        ` + "`" + `;
        eventsEl.prepend(wrapper);
      }

      async function poll() {
        const resp = await fetch(` + "`/events?since=${lastId}`" + `);
        const data = await resp.json();
        data.events.forEach(renderEvent);
        lastId = data.next_id;
        setTimeout(poll, 1000);
      }

      poll();
    </script>
  </body>
</html>
`

// eventsResponse is the polling endpoint payload.
type eventsResponse struct {
	Events []Event `json:"events"`
	NextID int64   `json:"next_id"`
}

// Handler returns the viewer HTTP routes for r: GET / serves the static
// viewer page and GET /events?since=<id> serves incremental events. A
// disabled recorder answers with an empty event list so the viewer degrades
// gracefully.
func Handler(r *Recorder) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /events", func(w http.ResponseWriter, req *http.Request) {
		var since int64
		if raw := req.URL.Query().Get("since"); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				http.Error(w, "invalid since parameter", http.StatusBadRequest)
				return
			}
			since = parsed
		}

		events, nextID := r.EventsSince(since)
		if events == nil {
			events = []Event{}
		}
		writeJSON(w, eventsResponse{Events: events, NextID: nextID})
	})

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(viewerPage))
	})

	return mux
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Debug("trace viewer response write failed", "error", err)
	}
}
