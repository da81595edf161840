package dashboard

import (
	"fmt"
	"html/template"
)

var templateFuncs = template.FuncMap{
	"yesno": func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	},
	"pct": func(f float64) string {
		return fmt.Sprintf("%.1f%%", f)
	},
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>ReviewGoat</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: 'Inter', -apple-system, system-ui, sans-serif; background: #0f172a; color: #e2e8f0; min-height: 100vh; }
        .header { background: linear-gradient(135deg, #1e293b, #334155); padding: 1.5rem 2rem; border-bottom: 1px solid #475569; }
        .header h1 { font-size: 1.5rem; background: linear-gradient(135deg, #38bdf8, #818cf8); background-clip: text; -webkit-background-clip: text; -webkit-text-fill-color: transparent; }
        .header p { color: #94a3b8; font-size: 0.875rem; margin-top: 0.25rem; }
        main { padding: 2rem; display: grid; gap: 1.5rem; }
        .card { background: #1e293b; border: 1px solid #334155; border-radius: 12px; padding: 1.5rem; }
        .card h2 { font-size: 0.75rem; text-transform: uppercase; letter-spacing: 0.05em; color: #94a3b8; margin-bottom: 1rem; }
        form { display: flex; flex-wrap: wrap; gap: 1rem; align-items: flex-end; }
        label { display: grid; gap: 0.25rem; font-size: 0.875rem; color: #94a3b8; }
        input { background: #0f172a; border: 1px solid #475569; border-radius: 8px; color: #f1f5f9; padding: 0.5rem 0.75rem; font-size: 1rem; }
        button { background: #38bdf8; color: #0f172a; border: 0; border-radius: 8px; padding: 0.6rem 1.25rem; font-weight: 700; cursor: pointer; }
        .alert { border-radius: 8px; padding: 0.75rem 1rem; font-weight: 600; }
        .alert.error { background: #991b1b; color: #fca5a5; }
        .alert.success { background: #166534; color: #4ade80; }
        .stats { display: grid; grid-template-columns: repeat(auto-fit, minmax(160px, 1fr)); gap: 1rem; }
        .stat .label { font-size: 0.75rem; text-transform: uppercase; color: #94a3b8; }
        .stat .value { font-size: 1.5rem; font-weight: 700; color: #38bdf8; }
        a.download { color: #4ade80; font-weight: 600; }
        .bar-row { display: grid; grid-template-columns: 4rem 1fr 3rem; gap: 0.75rem; align-items: center; margin: 0.35rem 0; }
        .bar { height: 1.25rem; background: linear-gradient(90deg, #38bdf8, #818cf8); border-radius: 4px; }
        .table-wrap { overflow-x: auto; }
        table { width: 100%; border-collapse: collapse; font-size: 0.85rem; }
        th, td { text-align: left; padding: 0.5rem; border-bottom: 1px solid #334155; vertical-align: top; }
        th { color: #94a3b8; font-weight: 600; }
        td.body { white-space: pre-wrap; max-width: 40rem; }
        .footer { text-align: center; padding: 1rem; color: #475569; font-size: 0.75rem; }
    </style>
</head>
<body>
    <div class="header">
        <h1>ReviewGoat</h1>
        <p>Collect DLsite product reviews into a CSV file.</p>
    </div>
    <main>
        <div class="card">
            <h2>Scrape</h2>
            <form method="POST" action="/scrape">
                <label>Product ID (e.g. RJ323439)
                    <input name="product_id" value="{{.ProductID}}" pattern="RJ[0-9]+" required>
                </label>
                <label>Max pages
                    <input name="max_pages" type="number" min="1" max="{{.MaxPagesLimit}}" value="{{.MaxPages}}" required>
                </label>
                <button type="submit">Fetch reviews</button>
            </form>
        </div>

        {{if .Error}}<div class="alert error">{{.Error}}</div>{{end}}
        {{if .NotFound}}<div class="alert error">No reviews were found. Please check the product ID.</div>{{end}}

        {{with .Result}}
        <div class="alert success">Fetched {{len .Reviews}} reviews.</div>

        <div class="card">
            <h2>Summary</h2>
            <div class="stats">
                <div class="stat"><div class="label">Product</div><div class="value">{{.ProductID}}</div></div>
                <div class="stat"><div class="label">Reviews</div><div class="value">{{len .Reviews}}</div></div>
                <div class="stat"><div class="label">Total on site</div><div class="value">{{if .Total.Known}}{{.Total.N}}{{else}}unknown{{end}}</div></div>
                <div class="stat"><div class="label">Pages</div><div class="value">{{.PagesVisited}} / {{.RequiredPages}}</div></div>
                <div class="stat"><div class="label">Stopped</div><div class="value">{{.StopReason}}</div></div>
            </div>
            <p style="margin-top:1rem"><a class="download" href="{{$.DownloadURL}}" download="{{$.Filename}}">Download CSV ({{$.Filename}})</a></p>
        </div>

        {{if $.Chart}}
        <div class="card">
            <h2>Rating distribution</h2>
            {{range $.Chart}}
            <div class="bar-row">
                <span>{{.Rate}}</span>
                <div class="bar" style="width: {{pct .Percent}}"></div>
                <span>{{.Count}}</span>
            </div>
            {{end}}
        </div>
        {{end}}

        <div class="card">
            <h2>Reviews</h2>
            <div class="table-wrap">
                <table>
                    <thead>
                        <tr><th>title</th><th>rate</th><th>date</th><th>author</th><th>purchased</th><th>attention</th><th>review</th><th>select_genre</th></tr>
                    </thead>
                    <tbody>
                        {{range .Reviews}}
                        <tr>
                            <td>{{.Title}}</td>
                            <td>{{.Rate}}</td>
                            <td>{{.Date}}</td>
                            <td>{{.Author}}</td>
                            <td>{{yesno .Purchased}}</td>
                            <td>{{yesno .Attention}}</td>
                            <td class="body">{{.Review}}</td>
                            <td>{{.SelectGenre}}</td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
        </div>
        {{end}}
    </main>
    <div class="footer">ReviewGoat</div>
</body>
</html>`
