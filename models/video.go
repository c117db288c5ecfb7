package models

// Word is a single transcribed word with provider timestamps in seconds.
type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

// Segment is a provider-produced run of speech with timestamps in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript holds the original-language transcription of one video.
// Exactly one of Text-with-content or Error is meaningful: a failed
// transcription stores the provider error plus the sentinel text
// "Transcription failed" and empty word/segment lists.
type Transcript struct {
	Text     string    `json:"text"`
	Words    []Word    `json:"words"`
	Segments []Segment `json:"segments"`
	Error    string    `json:"error,omitempty"`
}

// Failed reports whether the transcription stage degraded for this record.
func (t Transcript) Failed() bool {
	return t.Error != ""
}

// TranslatedChunk is one translated 30-second window. The translation
// granularity is deliberately coarser than the transcript's word level:
// the provider is called once per window, not per word.
type TranslatedChunk struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranslatedTranscript is the windowed translation of a transcript. Words
// holds interval chunks, contiguous and ordered by start.
type TranslatedTranscript struct {
	Text  string            `json:"text"`
	Words []TranslatedChunk `json:"words"`
}

// VideoRecord is one video's full entry in the metadata store.
type VideoRecord struct {
	ID                string               `json:"ID"`
	Filename          string               `json:"filename"`
	Title             string               `json:"title"`
	Thumbnail         string               `json:"thumbnail,omitempty"`
	UploadDate        string               `json:"upload_date"`
	SizeMB            float64              `json:"size_mb"`
	Duration          float64              `json:"duration"`
	DurationFormatted string               `json:"duration_formatted"`
	Resolution        string               `json:"resolution"`
	FPS               float64              `json:"fps"`
	FrameCount        int                  `json:"frame_count"`
	Transcript        Transcript           `json:"transcript"`
	PDFFile           string               `json:"pdffile,omitempty"`
	Language          string               `json:"language"`
	Translated        TranslatedTranscript `json:"translated_transcript"`
}

// MetadataOnly returns a copy of the record with the bulky transcript
// payloads stripped, for listing endpoints.
func (r VideoRecord) MetadataOnly() VideoRecord {
	stripped := r
	stripped.Transcript = Transcript{}
	stripped.Translated = TranslatedTranscript{}
	return stripped
}
