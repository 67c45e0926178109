package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"docchat/internal/llm"
	"docchat/internal/models"
	"docchat/internal/session"
)

// State of the image-mode loop. Text mode has a single state and needs
// no tracking: every text turn returns to awaiting the next query.
type State int

const (
	AwaitingImageSelection State = iota
	AwaitingImageQuery
)

var (
	// ErrNoImages signals that the processed document has no embedded images.
	ErrNoImages = errors.New("no images found in the document")

	// ErrImageNotFound rejects an address that matches no extracted image.
	ErrImageNotFound = errors.New("no image at the given address")

	// ErrNoImageSelected rejects an image question before a selection is made.
	ErrNoImageSelected = errors.New("no image selected")

	// ErrNoDocument rejects chat turns before any document was processed.
	ErrNoDocument = errors.New("no document has been processed")
)

// Orchestrator routes each user turn to the right answering strategy.
// It owns turn assembly and transcript bookkeeping; the session carries
// the state it reads and writes.
type Orchestrator struct {
	text       llm.TextAnswerer
	vision     llm.VisionAnswerer
	retrievalK int

	// the selection is kept as an address, not a pointer into the session:
	// it must go stale when a new document replaces the image set
	state         State
	selectedPage  int
	selectedIndex int
}

func New(text llm.TextAnswerer, vision llm.VisionAnswerer, retrievalK int) *Orchestrator {
	if retrievalK <= 0 {
		retrievalK = models.DefaultRetrievalK
	}
	return &Orchestrator{
		text:       text,
		vision:     vision,
		retrievalK: retrievalK,
		state:      AwaitingImageSelection,
	}
}

// ImageState reports where the image-mode loop currently stands
func (o *Orchestrator) ImageState() State {
	return o.state
}

// TextTurn runs one retrieval-augmented turn: retrieve context, assemble
// the prompt with the running history, delegate, and append both the user
// and the assistant entry. A failing answering service never aborts the
// turn; its error becomes the assistant's content so the transcript always
// ends with a matched pair.
func (o *Orchestrator) TextTurn(ctx context.Context, s *session.Session, query string) (string, error) {
	if !s.Processed() {
		return "", ErrNoDocument
	}

	s.AppendTurn(models.RoleUser, query)

	answer := o.answerText(ctx, s, query)
	s.AppendTurn(models.RoleAssistant, answer)
	return answer, nil
}

func (o *Orchestrator) answerText(ctx context.Context, s *session.Session, query string) string {
	chunks, err := s.Index.Search(ctx, query, o.retrievalK)
	if err != nil {
		log.Warn().Err(err).Msg("Context retrieval failed")
		return fmt.Sprintf("An error occurred during chat: %v", err)
	}

	prompt := BuildPrompt(chunks, s.Transcript, query)
	answer, err := o.text.Answer(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("Text answering service failed")
		return fmt.Sprintf("An error occurred during chat: %v", err)
	}
	return answer
}

// Addresses lists the selectable image addresses in extraction order
func (o *Orchestrator) Addresses(s *session.Session) []string {
	out := make([]string, len(s.Images))
	for i, img := range s.Images {
		out[i] = img.Address()
	}
	return out
}

// SelectImage picks the image at (page, indexOnPage) for the next image
// question and advances the image loop to awaiting that question.
func (o *Orchestrator) SelectImage(s *session.Session, page, indexOnPage int) error {
	if !s.Processed() {
		return ErrNoDocument
	}
	if len(s.Images) == 0 {
		return ErrNoImages
	}
	if findImage(s.Images, page, indexOnPage) == nil {
		return fmt.Errorf("%w: page %d, image %d", ErrImageNotFound, page, indexOnPage)
	}
	o.selectedPage = page
	o.selectedIndex = indexOnPage
	o.state = AwaitingImageQuery
	return nil
}

func findImage(images []models.ExtractedImage, page, indexOnPage int) *models.ExtractedImage {
	for i := range images {
		if images[i].PageNumber == page && images[i].IndexOnPage == indexOnPage {
			return &images[i]
		}
	}
	return nil
}

// ImageTurn sends the selected image and the raw question to the vision
// service. No retrieval, no history: image answers are ephemeral and are
// not appended to the shared text transcript. The loop then returns to
// awaiting the next selection. Service failures are rendered as the
// answer, never propagated. The selection is resolved against the current
// session, so a selection made before the document was replaced fails
// with ErrImageNotFound instead of answering about the old document.
func (o *Orchestrator) ImageTurn(ctx context.Context, s *session.Session, question string) (string, error) {
	if o.state != AwaitingImageQuery {
		return "", ErrNoImageSelected
	}

	page, indexOnPage := o.selectedPage, o.selectedIndex
	o.selectedPage = 0
	o.selectedIndex = 0
	o.state = AwaitingImageSelection

	img := findImage(s.Images, page, indexOnPage)
	if img == nil {
		return "", fmt.Errorf("%w: page %d, image %d", ErrImageNotFound, page, indexOnPage)
	}

	answer, err := o.vision.AnswerImage(ctx, img.Pixels, question)
	if err != nil {
		log.Warn().Err(err).
			Int("page", img.PageNumber).
			Int("index", img.IndexOnPage).
			Msg("Vision answering service failed")
		return fmt.Sprintf("An error occurred while querying the vision model: %v", err), nil
	}
	return answer, nil
}
