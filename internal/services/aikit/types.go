package aikit

// Word is a single transcribed or translated word with timing in seconds.
type Word struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcription is the result of a transcription call.
type Transcription struct {
	Text             string `json:"text"`
	Words            []Word `json:"words"`
	DetectedLanguage string `json:"detectedLanguage"`
}

// Translation is the result of a translation call.
type Translation struct {
	TranslatedText string `json:"translatedText"`
	Words          []Word `json:"words"`
}

// Synthesis is the result of a speech-synthesis call.
type Synthesis struct {
	AudioBytes []byte
	// Format is the audio container the bytes are in (e.g. "mp3").
	Format    string
	VoiceUsed string
}

// Rect is a normalized rectangle with coordinates in [0,1].
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a normalized point with coordinates in [0,1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FrameAnalysis is the result of a frame-analysis call.
type FrameAnalysis struct {
	HasFace       bool
	FacePosition  *Point
	ContentFocus  *Point
	SuggestedCrop *Point
	ContentBounds *Rect
}
