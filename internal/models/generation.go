package models

// Phase is the position of one product in the generation state machine.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseFailure Phase = "failure"
)

// GenerationState is the per-product record. Loading and a populated
// ErrorMessage never hold at the same time, and VideoURL is only written by a
// successful run.
type GenerationState struct {
	Phase        Phase     `json:"phase"`
	Loading      bool      `json:"loading"`
	ErrorKind    ErrorKind `json:"errorKind,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	VideoURL     string    `json:"videoUrl,omitempty"`

	// epoch identifies the run that owns a Loading state, so a settle can
	// tell whether it still belongs to the latest trigger.
	epoch uint64
}

func (s GenerationState) Epoch() uint64 {
	return s.epoch
}

// Begin moves the state to Loading for the run identified by epoch. Any
// previous error is cleared and the previous video url is kept.
func (s GenerationState) Begin(epoch uint64) GenerationState {
	return GenerationState{
		Phase:    PhaseLoading,
		Loading:  true,
		VideoURL: s.VideoURL,
		epoch:    epoch,
	}
}

// Settle applies an outcome to a Loading state.
func (s GenerationState) Settle(out Outcome) GenerationState {
	next := GenerationState{
		VideoURL: s.VideoURL,
		epoch:    s.epoch,
	}
	if out.Err != nil {
		next.Phase = PhaseFailure
		next.ErrorKind = out.Err.Kind
		next.ErrorMessage = out.Err.Message
		return next
	}
	next.Phase = PhaseSuccess
	next.VideoURL = out.VideoURL
	return next
}

// Outcome is how a generation run settles: either a video url or an error.
type Outcome struct {
	ProductID string           `json:"productId"`
	VideoURL  string           `json:"videoUrl,omitempty"`
	Err       *GenerationError `json:"error,omitempty"`
}

func Success(productID, videoURL string) Outcome {
	return Outcome{ProductID: productID, VideoURL: videoURL}
}

func Failure(productID string, err *GenerationError) Outcome {
	return Outcome{ProductID: productID, Err: err}
}

func (o Outcome) OK() bool {
	return o.Err == nil
}

// ModalState binds the preview modal to one product. Open implies ProductID
// is set and that product has a video url.
type ModalState struct {
	Open      bool   `json:"open"`
	ProductID string `json:"productId,omitempty"`
}
