package capture

import "context"

// Capability ports for the slow external calls the coordinator awaits.
// Real speech-to-text and OCR engines plug in behind these without the
// coordinator or the extraction rules changing.
type (
	// Transcriber turns recorded audio into plain text.
	Transcriber interface {
		Transcribe(ctx context.Context, audioHandle string) (string, error)
	}

	// TextRecognizer turns a captured image into plain text.
	TextRecognizer interface {
		ExtractText(ctx context.Context, imageHandle string) (string, error)
	}
)
