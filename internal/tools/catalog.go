// Package tools defines the catalog of tool placeholders offered by the
// bot. Each tool is identified by an opaque callback token and currently
// only replies with its activation prompt; the real media, conversion,
// and generation logic lives outside this system.
package tools

// Callback tokens, one per menu button.
const (
	TokenInstagram   = "ig"
	TokenYouTube     = "yt"
	TokenFacebook    = "fb"
	TokenImageToPDF  = "img_pdf"
	TokenPDFToImage  = "pdf_img"
	TokenTextToVoice = "tts"
	TokenCaption     = "caption"
	TokenHashtag     = "hashtag"
)

type tool struct {
	token  string
	label  string
	prompt string
}

// catalog fixes the menu order.
var catalog = []tool{
	{TokenInstagram, "📥 Instagram Reels", "📥 Send Instagram Reel link"},
	{TokenYouTube, "▶️ YouTube Video", "▶️ Send YouTube video link"},
	{TokenFacebook, "📘 Facebook Video", "📘 Send Facebook video link"},
	{TokenImageToPDF, "🖼 Image ➜ PDF", "🖼 Send image to convert into PDF"},
	{TokenPDFToImage, "📄 PDF ➜ Image", "📄 Send PDF to convert into images"},
	{TokenTextToVoice, "🔊 Text ➜ Voice", "🔊 Send text to convert into voice"},
	{TokenCaption, "✍️ Caption Generator", "✍️ Send topic for caption"},
	{TokenHashtag, "🏷 Hashtag Generator", "🏷 Send topic for hashtags"},
}

var prompts = func() map[string]string {
	m := make(map[string]string, len(catalog))
	for _, t := range catalog {
		m[t.token] = t.prompt
	}
	return m
}()

// Prompt returns the activation prompt for token. Unknown tokens report
// ok == false so callers can reject them explicitly.
func Prompt(token string) (string, bool) {
	prompt, ok := prompts[token]
	return prompt, ok
}

// IsKnown reports whether token names a catalog tool.
func IsKnown(token string) bool {
	_, ok := prompts[token]
	return ok
}

// Button describes one menu entry.
type Button struct {
	Token string
	Label string
}

// Buttons returns the menu entries in display order.
func Buttons() []Button {
	buttons := make([]Button, 0, len(catalog))
	for _, t := range catalog {
		buttons = append(buttons, Button{Token: t.token, Label: t.label})
	}
	return buttons
}
