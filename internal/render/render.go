// Package render produces the self-contained HTML documents mailed out by
// the monitor. Article fields are interpolated verbatim (text/template, not
// html/template): titles already went through the feed cleanup and the
// digest is expected to reproduce them exactly.
package render

import (
	"strings"
	"text/template"
	"time"

	"github.com/duyuru-hq/haber-sentry/internal/domain"
)

const (
	digestDateLayout = "January 2, 2006"
	alertDateLayout  = "January 2, 2006 15:04"

	// NoItemsPlaceholder is rendered when a digest has nothing to show.
	NoItemsPlaceholder = "No news items found for today."
)

type digestData struct {
	Date     string
	Articles []domain.Article
}

type alertData struct {
	Date     string
	Keyword  string
	Count    int
	Articles []domain.Article
}

var digestTmpl = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; }
  .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
  .content { padding: 20px; background: #f9f9f9; }
  .news-item { background: white; padding: 15px; margin-bottom: 15px; border-radius: 8px; border-left: 4px solid #667eea; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
  .news-title { font-size: 16px; font-weight: bold; color: #333; text-decoration: none; }
  .news-title:hover { color: #667eea; }
  .news-desc { font-size: 13px; color: #555; margin-top: 6px; }
  .news-meta { font-size: 12px; color: #888; margin-top: 8px; }
  .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
</style>
</head>
<body>
<div class="header">
  <h1>Daily News Digest</h1>
  <p>{{.Date}}</p>
</div>
<div class="content">
{{- if .Articles}}
{{- range .Articles}}
  <div class="news-item">
    <a href="{{.Link}}" class="news-title">{{.Title}}</a>
{{- if .Description}}
    <div class="news-desc">{{.Description}}</div>
{{- end}}
    <div class="news-meta">{{.Source}} | {{.PubDate}}</div>
  </div>
{{- end}}
{{- else}}
  <p>` + NoItemsPlaceholder + `</p>
{{- end}}
</div>
<div class="footer">
  <p>This email was automatically generated by haber-sentry</p>
</div>
</body>
</html>
`))

var alertTmpl = template.Must(template.New("alert").Parse(`<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; }
  .header { background: linear-gradient(135deg, #f093fb 0%, #f5576c 100%); color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
  .alert-badge { background: #ff4757; padding: 5px 15px; border-radius: 20px; display: inline-block; margin-bottom: 10px; }
  .content { padding: 20px; background: #f9f9f9; }
  .news-item { background: white; padding: 15px; margin-bottom: 15px; border-radius: 8px; border-left: 4px solid #f5576c; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
  .news-title { font-size: 16px; font-weight: bold; color: #333; text-decoration: none; }
  .news-meta { font-size: 12px; color: #888; margin-top: 8px; }
  .keyword { background: #fff3cd; padding: 2px 6px; border-radius: 3px; font-weight: bold; }
  .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
</style>
</head>
<body>
<div class="header">
  <div class="alert-badge">KEYWORD ALERT</div>
  <h1>News Alert: "{{.Keyword}}"</h1>
  <p>{{.Date}}</p>
</div>
<div class="content">
  <p>We found <strong>{{.Count}}</strong> news item(s) containing the keyword <span class="keyword">{{.Keyword}}</span>:</p>
{{- range .Articles}}
  <div class="news-item">
    <a href="{{.Link}}" class="news-title">{{.Title}}</a>
    <div class="news-meta">{{.Source}} | {{.PubDate}}</div>
  </div>
{{- end}}
</div>
<div class="footer">
  <p>This is an automated keyword alert from haber-sentry</p>
</div>
</body>
</html>
`))

// Digest renders the daily digest document for the given articles.
func Digest(articles []domain.Article, now time.Time) string {
	return execute(digestTmpl, digestData{
		Date:     now.Format(digestDateLayout),
		Articles: articles,
	})
}

// Alert renders a keyword alert document for the given matches.
func Alert(keyword string, matches []domain.Article, now time.Time) string {
	return execute(alertTmpl, alertData{
		Date:     now.Format(alertDateLayout),
		Keyword:  keyword,
		Count:    len(matches),
		Articles: matches,
	})
}

func execute(tmpl *template.Template, data any) string {
	var sb strings.Builder
	// Templates are static and the data holds plain values only, so
	// execution cannot fail.
	_ = tmpl.Execute(&sb, data)
	return sb.String()
}
