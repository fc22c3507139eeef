package server

import (
	"html/template"
	"log"
	"net/http"
	"sort"

	"portfolio/internal/tools"
)

type pageData struct {
	Jobs      []tools.JobView
	Education []tools.EducationView
}

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

func (ws *WebServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data := pageData{
		Jobs:      tools.ListAllJobs(ws.content),
		Education: tools.ListAllEducation(ws.content),
	}
	// newest first; dates are YYYY-MM-DD so they sort lexically
	sort.SliceStable(data.Jobs, func(i, j int) bool { return data.Jobs[i].StartDate > data.Jobs[j].StartDate })
	sort.SliceStable(data.Education, func(i, j int) bool { return data.Education[i].StartDate > data.Education[j].StartDate })

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		log.Printf("Error rendering template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Résumé</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 860px; margin: 0 auto; padding: 2rem 1rem; color: #1f2933; }
        h1 { margin-bottom: 0.25rem; }
        section { margin-top: 2rem; }
        .entry { border-left: 3px solid #6366f1; padding: 0.25rem 1rem; margin: 1rem 0; }
        .entry h3 { margin: 0; }
        .meta { color: #616e7c; font-size: 0.9rem; }
        .tags span { display: inline-block; background: #eef2ff; border-radius: 4px; padding: 0 6px; margin: 2px; font-size: 0.8rem; }
        .body { white-space: pre-wrap; }
        #chat-toggle { position: fixed; right: 1.5rem; bottom: 1.5rem; border-radius: 999px; border: 0; padding: 0.75rem 1.25rem; background: #6366f1; color: #fff; cursor: pointer; }
        #chat-panel { position: fixed; right: 1.5rem; bottom: 5rem; width: 360px; max-height: 70vh; display: none; flex-direction: column; background: #fff; border: 1px solid #cbd2d9; border-radius: 8px; box-shadow: 0 8px 24px rgba(0,0,0,.15); }
        #chat-panel.open { display: flex; }
        #chat-log { flex: 1; overflow-y: auto; padding: 0.75rem; }
        .msg { margin: 0.5rem 0; white-space: pre-wrap; }
        .msg.user { text-align: right; }
        .msg.user span { background: #6366f1; color: #fff; }
        .msg span { display: inline-block; padding: 0.4rem 0.6rem; border-radius: 6px; background: #f0f4f8; }
        .empty { color: #616e7c; text-align: center; margin-top: 2rem; }
        #chat-form { display: flex; border-top: 1px solid #e4e7eb; }
        #chat-input { flex: 1; border: 0; padding: 0.75rem; }
        #chat-send { border: 0; background: none; padding: 0 1rem; cursor: pointer; }
    </style>
</head>
<body>
    <header>
        <h1>Work history</h1>
        <p class="meta">Ask the assistant in the corner about skills and experience.</p>
    </header>

    <section>
        <h2>Experience</h2>
        {{range .Jobs}}
        <div class="entry">
            <h3>{{.JobTitle}} · {{.Company}}</h3>
            <div class="meta">{{.StartDate}} – {{if .EndDate}}{{.EndDate}}{{else}}present{{end}}{{if .Location}} · {{.Location}}{{end}}</div>
            <p>{{.Summary}}</p>
            <div class="tags">{{range .Tags}}<span>{{.}}</span>{{end}}</div>
            <div class="body">{{.Content}}</div>
        </div>
        {{else}}
        <p class="meta">No jobs yet.</p>
        {{end}}
    </section>

    <section>
        <h2>Education</h2>
        {{range .Education}}
        <div class="entry">
            <h3>{{.School}}</h3>
            <div class="meta">{{.StartDate}} – {{if .EndDate}}{{.EndDate}}{{else}}present{{end}}</div>
            <p>{{.Summary}}</p>
            <div class="tags">{{range .Tags}}<span>{{.}}</span>{{end}}</div>
        </div>
        {{else}}
        <p class="meta">No education entries yet.</p>
        {{end}}
    </section>

    <button id="chat-toggle" type="button">Ask about this résumé</button>
    <div id="chat-panel">
        <div id="chat-log"></div>
        <form id="chat-form">
            <input id="chat-input" autocomplete="off" placeholder="Ask about skills, experience, or qualifications...">
            <button id="chat-send" type="submit">Send</button>
        </form>
    </div>

    <script>
    (function () {
        const state = { open: false, phase: "idle", messages: [] };
        const panel = document.getElementById("chat-panel");
        const log = document.getElementById("chat-log");
        const input = document.getElementById("chat-input");
        const send = document.getElementById("chat-send");

        function newId() {
            return (crypto.randomUUID && crypto.randomUUID()) || String(Date.now() + Math.random());
        }

        function render() {
            panel.classList.toggle("open", state.open);
            send.disabled = state.phase !== "idle";
            input.disabled = state.phase !== "idle";
            log.innerHTML = "";
            if (state.messages.length === 0) {
                const empty = document.createElement("div");
                empty.className = "empty";
                empty.textContent = "Welcome, Recruiter! Ask about skills, experience, or qualifications...";
                log.appendChild(empty);
                return;
            }
            for (const m of state.messages) {
                const row = document.createElement("div");
                row.className = "msg " + m.role;
                const bubble = document.createElement("span");
                bubble.textContent = m.parts.map(p => p.content).join("") || (state.phase !== "idle" ? "…" : "");
                row.appendChild(bubble);
                log.appendChild(row);
            }
            log.scrollTop = log.scrollHeight;
        }

        document.getElementById("chat-toggle").addEventListener("click", function () {
            state.open = !state.open;
            render();
        });

        document.getElementById("chat-form").addEventListener("submit", async function (ev) {
            ev.preventDefault();
            const text = input.value.trim();
            if (!state.open || state.phase !== "idle" || text === "") {
                return;
            }
            input.value = "";
            state.messages.push({ id: newId(), role: "user", parts: [{ type: "text", content: text }] });
            const reply = { id: newId(), role: "assistant", parts: [{ type: "text", content: "" }] };
            state.phase = "sending";
            render();

            try {
                const res = await fetch("/api/resume-chat", {
                    method: "POST",
                    headers: { "Content-Type": "application/json" },
                    body: JSON.stringify({ messages: state.messages })
                });
                if (!res.ok) {
                    const body = await res.json().catch(() => ({}));
                    throw new Error(body.message || res.statusText);
                }
                const reader = res.body.getReader();
                const decoder = new TextDecoder();
                let buffer = "";
                let finished = false;
                let breakPending = false;
                while (!finished) {
                    const { value, done } = await reader.read();
                    if (done) break;
                    buffer += decoder.decode(value, { stream: true });
                    let idx;
                    while ((idx = buffer.indexOf("\n\n")) >= 0) {
                        const frame = buffer.slice(0, idx);
                        buffer = buffer.slice(idx + 2);
                        const data = frame.split("\n").filter(l => l.startsWith("data:")).map(l => l.slice(5).trim()).join("\n");
                        if (data === "[DONE]") { finished = true; break; }
                        if (!data) continue;
                        const chunk = JSON.parse(data);
                        if (state.phase === "sending") {
                            state.phase = "streaming";
                            state.messages.push(reply);
                        }
                        if (chunk.type === "content") {
                            if (breakPending && chunk.delta) {
                                reply.parts[0].content += "\n\n";
                                breakPending = false;
                            }
                            reply.parts[0].content += chunk.delta || "";
                        } else if (chunk.type === "tool_call") {
                            breakPending = reply.parts[0].content !== "";
                        } else if (chunk.type === "error") {
                            reply.parts[0].content += "\n[" + (chunk.error && chunk.error.message || "error") + "]";
                        }
                        render();
                    }
                }
            } catch (err) {
                state.messages.push({ id: newId(), role: "assistant", parts: [{ type: "text", content: "[" + err.message + "]" }] });
            } finally {
                state.phase = "idle";
                render();
            }
        });

        render();
    })();
    </script>
</body>
</html>`
