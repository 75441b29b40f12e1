package server

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/spektr-org/simtrace/engine"
)

// ── Template helpers ──────────────────────────────────────────────────────────

var funcMap = template.FuncMap{
	"fmtNum": engine.FormatNumber,
	"fmtInt": engine.FormatInt,
	"fmtStep": func(step float64) string {
		if step <= 0 {
			return "any"
		}
		return engine.FormatNumber(step)
	},
}

var pageTmpl = template.Must(template.New("page").Funcs(funcMap).Parse(tmplDashboard))

type pageData struct {
	Title        string
	DatasetID    string
	Rows         int
	AllRuns      string
	Seeds        []string
	MessageTypes []string
	Domain       engine.FailureDomain
	Runs         *engine.TableData
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data := pageData{
		Title:        fmt.Sprintf("simtrace · %s events", engine.FormatInt(s.table.Len())),
		DatasetID:    s.table.ID(),
		Rows:         s.table.Len(),
		AllRuns:      engine.AllRuns,
		Seeds:        s.table.Seeds(),
		MessageTypes: s.table.MessageTypes(),
		Domain:       s.table.FailureDomain(),
		Runs:         engine.BuildRunTable(s.table.Runs()),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		slog.Error("template error", "error", err)
	}
}

const tmplDashboard = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 0; display: flex; color: #1f2328; }
  aside { width: 260px; padding: 16px; border-right: 1px solid #d0d7de; height: 100vh; overflow-y: auto; box-sizing: border-box; }
  main { flex: 1; padding: 16px; overflow-y: auto; height: 100vh; box-sizing: border-box; }
  fieldset { border: 1px solid #d0d7de; margin-bottom: 12px; }
  label { display: block; font-size: 14px; }
  img { max-width: 100%; display: block; margin-bottom: 16px; }
  table { border-collapse: collapse; font-size: 13px; }
  td, th { border: 1px solid #d0d7de; padding: 4px 8px; }
  td.num { text-align: right; }
  #status { color: #57606a; margin-bottom: 12px; }
</style>
</head>
<body>
<aside>
  <fieldset>
    <legend>Y axis</legend>
    <select id="yAxis">
      <option value="receiver">Receiver</option>
      <option value="emitter">Emitter</option>
    </select>
  </fieldset>

  <fieldset id="runs">
    <legend>Runs</legend>
    <label><input type="checkbox" value="{{.AllRuns}}" checked> {{.AllRuns}}</label>
    {{range .Seeds}}<label><input type="checkbox" value="{{.}}"> {{.}}</label>
    {{end}}
  </fieldset>

  <fieldset id="types">
    <legend>Message types</legend>
    {{range .MessageTypes}}<label><input type="checkbox" value="{{.}}" checked> {{if .}}{{.}}{{else}}(empty){{end}}</label>
    {{end}}
  </fieldset>

  <fieldset>
    <legend>Failure rate</legend>
    <label>From <input id="rateLo" type="number" min="{{fmtNum .Domain.Min}}" max="{{fmtNum .Domain.Max}}" step="{{fmtStep .Domain.Step}}" value="{{fmtNum .Domain.Min}}"></label>
    <label>To <input id="rateHi" type="number" min="{{fmtNum .Domain.Min}}" max="{{fmtNum .Domain.Max}}" step="{{fmtStep .Domain.Step}}" value="{{fmtNum .Domain.Max}}"></label>
  </fieldset>

  <label><input id="showLatencies" type="checkbox"> Show latencies</label>
</aside>

<main>
  <div id="status">{{fmtInt .Rows}} events loaded · dataset {{.DatasetID}}</div>
  <div id="charts"></div>

  <h3>{{.Runs.Title}}</h3>
  <table>
    <thead><tr>{{range .Runs.Columns}}<th>{{.Label}}</th>{{end}}</tr></thead>
    <tbody id="runRows">
    {{range .Runs.Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
    {{end}}
    </tbody>
  </table>
</main>

<script>
function checked(id) {
  return Array.from(document.querySelectorAll('#' + id + ' input:checked')).map(e => e.value);
}

function currentRequest() {
  return {
    yAxis: document.getElementById('yAxis').value,
    runs: checked('runs'),
    types: checked('types'),
    failureRates: [
      parseFloat(document.getElementById('rateLo').value),
      parseFloat(document.getElementById('rateHi').value),
    ],
    showLatencies: document.getElementById('showLatencies').checked,
  };
}

let ws;

function send() {
  if (ws && ws.readyState === WebSocket.OPEN) {
    ws.send(JSON.stringify(currentRequest()));
  }
}

function renderRuns(table) {
  const body = document.getElementById('runRows');
  body.innerHTML = '';
  for (const row of table.rows) {
    const tr = document.createElement('tr');
    for (const cell of row) {
      const td = document.createElement('td');
      td.textContent = cell;
      tr.appendChild(td);
    }
    body.appendChild(tr);
  }
}

function render(reply) {
  const status = document.getElementById('status');
  if (!reply.success) {
    status.textContent = reply.error;
    return;
  }
  status.textContent = reply.reply;
  const charts = document.getElementById('charts');
  charts.innerHTML = '';
  for (const tl of reply.timelines) {
    const img = document.createElement('img');
    img.alt = tl.title;
    img.src = '/api/chart/' + tl.id + '.png?session=' + encodeURIComponent(reply.session) + '&seq=' + reply.seq;
    charts.appendChild(img);
  }
  if (reply.runTable) {
    renderRuns(reply.runTable);
  }
}

function connect() {
  const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
  ws = new WebSocket(proto + location.host + '/ws');
  ws.onopen = send;
  ws.onmessage = ev => render(JSON.parse(ev.data));
  ws.onclose = () => setTimeout(connect, 2000);
}

document.querySelectorAll('aside input, aside select').forEach(el => el.addEventListener('change', send));
connect();
</script>
</body>
</html>
`
