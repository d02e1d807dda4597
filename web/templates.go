package web

import (
	"html/template"
	"time"
)

func newTemplates() *template.Template {
	funcs := template.FuncMap{
		"formatTime": formatTime,
	}
	return template.Must(template.New("page").Funcs(funcs).Parse(pageTemplate))
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Local().Format("2006-01-02 15:04:05")
}

const pageTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>pv {{.Title}}</title>
  <style>
    :root {
      color-scheme: light;
    }
    body {
      margin: 0;
      font-family: "Charter", "Georgia", serif;
      color: #2b2520;
      background: radial-gradient(circle at top left, #f4efe3 0%, #fcfaf6 55%, #f6f2e8 100%);
    }
    header {
      display: flex;
      justify-content: space-between;
      align-items: center;
      padding: 16px 24px;
      border-bottom: 1px solid #d7cdbd;
      background: rgba(255, 255, 255, 0.72);
    }
    header h1 {
      margin: 0;
      font-size: 20px;
      letter-spacing: 0.02em;
    }
    main {
      max-width: 720px;
      margin: 24px auto;
      padding: 0 24px;
    }
    form.inline {
      display: inline;
    }
    .error {
      color: #9b2c1f;
      min-height: 1.2em;
    }
    .message {
      color: #2f6b3a;
    }
    ul.todos {
      list-style: none;
      padding: 0;
    }
    .todo-item {
      display: flex;
      justify-content: space-between;
      gap: 12px;
      padding: 10px 0;
      border-bottom: 1px solid #e4dccf;
    }
    .todo-text.done {
      text-decoration: line-through;
      color: #8a7f73;
    }
    .small-meta {
      font-size: 12px;
      color: #8a7f73;
    }
    .source {
      font-size: 12px;
      padding: 2px 8px;
      border-radius: 999px;
      background: #efe8db;
    }
  </style>
</head>
<body>
  <header>
    <h1>pv</h1>
    {{- if .Username}}
    <form class="inline" method="post" action="/logout">
      <span>{{.Username}}</span>
      <button type="submit" id="logoutBtn">Log out</button>
    </form>
    {{- end}}
  </header>
  <main>
  {{- if eq .View "login"}}{{template "login" .}}
  {{- else if eq .View "register"}}{{template "register" .}}
  {{- else if eq .View "confirm"}}{{template "confirm" .}}
  {{- else}}{{template "todo" .}}{{end}}
  </main>
</body>
</html>

{{define "login"}}
    <h2>Log in</h2>
    {{- if .Message}}<p class="message">{{.Message}}</p>{{end}}
    <form id="loginForm" method="post" action="/login">
      <label>Username <input name="username" value="{{.Form.Username}}" autocomplete="username"></label>
      <label>Password <input name="password" type="password" autocomplete="current-password"></label>
      <button type="submit">Log in</button>
    </form>
    <p class="error" id="error">{{.Error}}</p>
    <p><a href="/register">Create an account</a></p>
{{end}}

{{define "register"}}
    <h2>Register</h2>
    <form id="registerForm" method="post" action="/register">
      <label>Username <input name="username" value="{{.Form.Username}}" autocomplete="username"></label>
      <label>Password <input name="password" type="password" autocomplete="new-password"></label>
      <button type="submit">Register</button>
    </form>
    <p class="error" id="msg">{{.Error}}</p>
    <p><a href="/login">Back to log in</a></p>
{{end}}

{{define "confirm"}}
    <h2>{{.Confirm.Message}}</h2>
    <form method="post" action="{{.Confirm.Action}}">
      {{- if .Confirm.HasID}}<input type="hidden" name="id" value="{{.Confirm.ID}}">{{end}}
      <input type="hidden" name="confirm" value="yes">
      <button type="submit">Yes</button>
      <a href="/todo">Cancel</a>
    </form>
{{end}}

{{define "todo"}}
    <form id="taskForm" method="post" action="/todo/create">
      <input id="taskText" name="text" value="{{.Form.Text}}" placeholder="What needs doing?">
      <button type="submit">Add</button>
    </form>
    <p class="error" id="taskError">{{.Error}}</p>
    <ul class="todos" id="todoList">
    {{- range .Items}}
      <li class="todo-item">
        <div class="todo-left">
          {{- if .Editable}}
          <form class="inline" method="post" action="/todo/toggle">
            <input type="hidden" name="id" value="{{.ID}}">
            <button type="submit" aria-label="toggle">{{if .Done}}[x]{{else}}[ ]{{end}}</button>
          </form>
          {{- else}}
          <input type="checkbox" disabled{{if .Done}} checked{{end}}>
          {{- end}}
          {{- if .Editing}}
          <form class="inline" method="post" action="/todo/edit">
            <input type="hidden" name="id" value="{{.ID}}">
            <input name="text" value="{{$.EditText}}">
            <button type="submit">Save</button>
            <button type="submit" name="cancel" value="1">Cancel</button>
          </form>
          {{- else}}
          <span class="todo-text{{if .Done}} done{{end}}">{{.Text}}</span>
          {{- end}}
          <div class="small-meta">{{formatTime .CreatedAt}}</div>
        </div>
        <div class="controls">
          {{- if .Editable}}
          <a class="icon-btn" href="/todo?edit={{.ID}}">Edit</a>
          <form class="inline" method="post" action="/todo/delete">
            <input type="hidden" name="id" value="{{.ID}}">
            <button type="submit" class="icon-btn">Delete</button>
          </form>
          {{- else}}
          <span class="source">external</span>
          {{- end}}
        </div>
      </li>
    {{- else}}
      <li class="empty">No tasks.</li>
    {{- end}}
    </ul>
    <form method="post" action="/todo/clear">
      <button type="submit" id="clearAll">Delete all local tasks</button>
    </form>
{{end}}
`
