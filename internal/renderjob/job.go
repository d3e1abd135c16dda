// Package renderjob defines the normalized render job descriptor and the
// request validation that produces it.
package renderjob

// FramesPerSecond is the fixed frame rate of every composition.
const FramesPerSecond = 30

// Template identifies a composition in the bundled render project.
type Template string

const (
	TemplateSimpleVideo Template = "SimpleVideo"
	TemplateEditVideo   Template = "EditVideo"
)

// Job is a normalized render job. It is marshaled as-is into the
// composition's input props, so optional fields carry `omitempty`: a field
// that was blank in the request is absent on the wire, never an empty
// string, and the renderer's presence checks stay reliable.
type Job struct {
	Template Template `json:"-"`

	Lines            []string `json:"lines"`
	VideoURL         string   `json:"videoUrl,omitempty"`
	DurationInFrames int      `json:"durationInFrames,omitempty"`

	MusicURL     string `json:"musicUrl,omitempty"`
	VoiceoverURL string `json:"voiceoverUrl,omitempty"`
	LogoURL      string `json:"logoUrl,omitempty"`
	PrimaryColor string `json:"primaryColor,omitempty"`
}
