// Package player renders the ad-blocked embed shell and the styled HTML
// error pages served to browser iframes.
package player

import (
	"fmt"
	"html"
	"strings"
)

// adBlockScript runs inside the outer embed page only. It cannot touch
// cross-origin iframe content; it just neutralizes popup and tab-hijack
// vectors on the page that hosts the player.
const adBlockScript = `<script>
(function() {
  window.open = function() { return null; };
  window.alert = function() {};
  window.confirm = function() { return false; };
  document.write = function() {};
  var origCreate = document.createElement.bind(document);
  document.createElement = function(tag) {
    var el = origCreate(tag);
    if (String(tag).toLowerCase() === 'a') {
      el.addEventListener('click', function(e) {
        if (el.target === '_blank') { e.preventDefault(); }
      });
    }
    return el;
  };
  window.addEventListener('beforeunload', function(e) {
    e.stopImmediatePropagation();
  }, true);
})();
</script>`

const embedShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Player</title>
<style>
  html, body { margin: 0; padding: 0; width: 100%%; height: 100%%; background: #000; overflow: hidden; }
  iframe { position: absolute; inset: 0; width: 100%%; height: 100%%; border: 0; }
  .spinner { position: absolute; top: 50%%; left: 50%%; width: 48px; height: 48px;
    margin: -24px 0 0 -24px; border: 4px solid #333; border-top-color: #f59e0b;
    border-radius: 50%%; animation: spin 0.8s linear infinite; }
  @keyframes spin { to { transform: rotate(360deg); } }
</style>
%s
</head>
<body>
<div class="spinner" id="spinner"></div>
<iframe src="%s" allowfullscreen allow="autoplay; encrypted-media; picture-in-picture"
  sandbox="allow-scripts allow-same-origin allow-presentation"
  onload="document.getElementById('spinner').remove()"></iframe>
</body>
</html>`

const errorShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>
  html, body { margin: 0; height: 100%%; background: #0f0f13; color: #e5e5e5;
    font-family: system-ui, -apple-system, sans-serif; }
  .wrap { display: flex; flex-direction: column; align-items: center;
    justify-content: center; height: 100%%; text-align: center; padding: 0 24px; }
  h1 { font-size: 20px; margin: 0 0 8px; color: #f59e0b; }
  p { margin: 0; font-size: 14px; color: #9ca3af; max-width: 420px; }
</style>
</head>
<body>
<div class="wrap">
  <h1>%s</h1>
  <p>%s</p>
</div>
</body>
</html>`

// GenerateEmbed wraps the resolved player URL in the ad-blocking shell.
// Plain http URLs are upgraded to https so the embed works inside secure
// pages.
func GenerateEmbed(iframeURL string) string {
	if strings.HasPrefix(iframeURL, "http://") {
		iframeURL = "https://" + strings.TrimPrefix(iframeURL, "http://")
	}
	return fmt.Sprintf(embedShell, adBlockScript, html.EscapeString(iframeURL))
}

// NotFoundPage renders the embed error page for missing content.
func NotFoundPage() string {
	return errorPage("Not Found", "Content Not Found",
		"The requested title or episode does not exist on the source.")
}

// MaintenancePage renders the embed error page for upstream timeouts.
func MaintenancePage() string {
	return errorPage("Temporarily Unavailable", "Source Under Maintenance",
		"The video source is taking too long to respond. Please try again in a few minutes.")
}

// ErrorPage renders the generic embed failure page.
func ErrorPage(message string) string {
	if message == "" {
		message = "Something went wrong while loading the player."
	}
	return errorPage("Playback Error", "Unable to Load Player", message)
}

func errorPage(title, heading, message string) string {
	return fmt.Sprintf(errorShell,
		html.EscapeString(title),
		html.EscapeString(heading),
		html.EscapeString(message))
}
