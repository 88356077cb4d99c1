package rolodex

import (
	"html/template"
	"net/http"
)

const (
	recordsPageTemplate = `<!doctype html>
<html>
	<head>
		<meta charset="UTF-8">
		<meta name="viewport" content="width=device-width, initial-scale=1.0">
		<title>Records</title>
		<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/uikit@3.17.11/dist/css/uikit.min.css" />
		<script src="https://unpkg.com/htmx.org@1.9.8"></script>
		<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
	</head>

	<style>
	tr.htmx-swapping td {
		opacity: 0;
		transition: opacity 1s ease-out;
	}
	</style>

	<body>
		<table class="uk-table uk-table-divider uk-margin-left uk-margin-right">
			<colgroup>
				<col>
				<col>
				<col>
				<col style="width: 300px;">
			</colgroup>

			<thead>
				<tr>
					<th>First Name</th>
					<th>Last Name</th>
					<th>Updated</th>
					<th></th>
				</tr>
			</thead>

			<tbody hx-ext="sse" sse-connect="/records/listen" sse-swap="newRecord" hx-swap="beforeend">
				<form hx-post="/records" hx-swap="none" hx-on::after-request="this.reset()">
					<td>
						<input class="uk-input" name="fname" type="text">
					</td>
					<td>
						<input class="uk-input" name="lname" type="text">
					</td>
					<td></td>
					<td>
						<button type="submit" class="uk-button uk-button-primary">Add Record</button>
					</td>
				</form>

				{{ range . }}
				{{ template "recordRow" . }}
				{{ end }}
			</tbody>
		</table>
	</body>
</html>`

	recordRowTemplate = `<tr hx-target="this" hx-swap="outerHTML">
	<td>{{ .FirstName }}</td>
	<td>{{ .LastName }}</td>
	<td>{{ .Timestamp }}</td>
	<td>
		<button class="uk-button uk-button-danger" hx-delete="/records/{{ .LastName }}" hx-swap="swap:1s">
			Delete
		</button>
	</td>
</tr>`
)

// HTML renders a Record as a table row for the records page and for
// server-sent events
func (rec *Record) HTML(*http.Request) string {
	tmpl := template.Must(template.New("recordRow").Parse(recordRowTemplate))
	return MustRenderHTML(tmpl, rec)
}

// HTML renders the full records page with the add-record form and the live
// table. It is served when GET /records is requested with Accept: text/html
func (recs Records) HTML(*http.Request) string {
	tmpl := template.Must(template.New("recordRow").Parse(recordRowTemplate))
	tmpl = template.Must(tmpl.New("recordsPage").Parse(recordsPageTemplate))
	return MustRenderHTML(tmpl, recs)
}
