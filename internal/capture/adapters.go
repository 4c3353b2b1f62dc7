package capture

import "context"

// Passthrough adapters cover deployments where speech recognition and OCR
// run on the capturing device itself: the submitted handle is already the
// recognized text, so the capability call is a no-op.
type (
	PassthroughTranscriber struct{}
	PassthroughRecognizer  struct{}
)

func (PassthroughTranscriber) Transcribe(ctx context.Context, audioHandle string) (string, error) {
	return audioHandle, nil
}

func (PassthroughRecognizer) ExtractText(ctx context.Context, imageHandle string) (string, error) {
	return imageHandle, nil
}
