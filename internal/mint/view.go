package mint

import (
	"fmt"

	"github.com/consensuslabs/pavilion-mint/internal/chain"
	apperrors "github.com/consensuslabs/pavilion-mint/internal/errors"
	"github.com/consensuslabs/pavilion-mint/internal/livepeer"
)

// Texts rendered by clients
const (
	HintSelectFile    = "Select a video file to upload."
	TextFileSelected  = "File Selected"
	TextStoringToIPFS = "Storing to IPFS"
	DefaultShareURL   = "https://twitter.com/intent/tweet?text=Video%20NFT%20created%20on%20Livepeer%20Studio%20app"
)

// ViewConfig holds the links a view renders
type ViewConfig struct {
	ExplorerURL string
	ShareURL    string
}

// View is the render model of one session
type View struct {
	SessionID    string      `json:"sessionId,omitempty" msgpack:"sessionId,omitempty"`
	Message      string      `json:"message,omitempty" msgpack:"message,omitempty"`
	State        State       `json:"state,omitempty" msgpack:"state,omitempty"`
	FailedStage  Stage       `json:"failedStage,omitempty" msgpack:"failedStage,omitempty"`
	Error        string      `json:"error,omitempty" msgpack:"error,omitempty"`
	Loading      bool        `json:"loading" msgpack:"loading"`
	ShowDropzone bool        `json:"showDropzone" msgpack:"showDropzone"`
	Intake       *IntakeView `json:"intake,omitempty" msgpack:"intake,omitempty"`
	Result       *ResultView `json:"result,omitempty" msgpack:"result,omitempty"`
}

// IntakeView is the upload form shown until the export has a CID
type IntakeView struct {
	FileSelected   bool     `json:"fileSelected" msgpack:"fileSelected"`
	FileName       string   `json:"fileName,omitempty" msgpack:"fileName,omitempty"`
	ProgressText   string   `json:"progressText,omitempty" msgpack:"progressText,omitempty"`
	Notices        []string `json:"notices,omitempty" msgpack:"notices,omitempty"`
	StoringToIPFS  bool     `json:"storingToIpfs" msgpack:"storingToIpfs"`
	Name           string   `json:"name" msgpack:"name"`
	Description    string   `json:"description" msgpack:"description"`
	InputsDisabled bool     `json:"inputsDisabled" msgpack:"inputsDisabled"`
	ShowSubmit     bool     `json:"showSubmit" msgpack:"showSubmit"`
	SubmitDisabled bool     `json:"submitDisabled" msgpack:"submitDisabled"`
}

// ResultView is the player and mint outcome shown once the export has a CID
type ResultView struct {
	PlaybackID  string `json:"playbackId" msgpack:"playbackId"`
	CID         string `json:"cid" msgpack:"cid"`
	URL         string `json:"url" msgpack:"url"`
	GatewayURL  string `json:"gatewayUrl" msgpack:"gatewayUrl"`
	MetadataURL string `json:"metadataUrl,omitempty" msgpack:"metadataUrl,omitempty"`
	TxHash      string `json:"txHash,omitempty" msgpack:"txHash,omitempty"`
	TxURL       string `json:"txUrl,omitempty" msgpack:"txUrl,omitempty"`
	ShareURL    string `json:"shareUrl,omitempty" msgpack:"shareUrl,omitempty"`
	WriteError  string `json:"writeError,omitempty" msgpack:"writeError,omitempty"`
}

// NoWalletView is all a visitor without a connected wallet sees
func NoWalletView() *View {
	return &View{Message: apperrors.ErrMsgWalletRequired}
}

// EmptyView is the form before a session exists
func EmptyView() *View {
	return &View{
		ShowDropzone: true,
		Intake: &IntakeView{
			ProgressText:   HintSelectFile,
			ShowSubmit:     true,
			SubmitDisabled: true,
		},
	}
}

// ProgressText formats creation progress the way the form shows it
func ProgressText(p Progress) string {
	switch p.Phase {
	case ProgressFailed:
		return apperrors.ErrMsgProcessingFailed
	case ProgressWaiting:
		return "Waiting"
	case ProgressUploading:
		return fmt.Sprintf("Uploading: %d%%", p.Percent)
	case ProgressProcessing:
		return fmt.Sprintf("Processing: %d%%", p.Percent)
	default:
		return ""
	}
}

// IsLoading is true while any external call is in flight or the asset or
// its export exists without being ready
func IsLoading(s *Session, fetching bool) bool {
	switch s.State {
	case StateCreating, StateUpdating, StateWriting:
		return true
	}
	if fetching {
		return true
	}
	if s.AssetID != "" && s.AssetPhase != livepeer.PhaseReady {
		return true
	}
	if s.Storage.Phase != "" && s.Storage.Phase != livepeer.PhaseReady {
		return true
	}
	return false
}

// BuildView renders s
func BuildView(s *Session, fetching bool, cfg ViewConfig) *View {
	loading := IsLoading(s, fetching)
	assetReady := s.AssetPhase == livepeer.PhaseReady

	view := &View{
		SessionID:    s.ID.String(),
		State:        s.State,
		FailedStage:  s.FailedStage,
		Error:        s.Error,
		Loading:      loading,
		ShowDropzone: !assetReady,
	}

	if s.Storage.CID != "" {
		result := &ResultView{
			PlaybackID:  s.Storage.CID,
			CID:         s.Storage.CID,
			URL:         s.Storage.URL,
			GatewayURL:  s.Storage.GatewayURL,
			MetadataURL: s.Storage.MetadataURL,
		}
		if s.Call.TxHash != "" && s.Call.Success {
			result.TxHash = s.Call.TxHash
			result.TxURL = chain.TxURL(cfg.ExplorerURL, s.Call.TxHash)
			result.ShareURL = cfg.ShareURL
			if result.ShareURL == "" {
				result.ShareURL = DefaultShareURL
			}
		} else if s.Call.Error != "" {
			result.WriteError = s.Call.Error
		}
		view.Result = result
		return view
	}

	form := &IntakeView{
		FileSelected:   s.HasFile() && s.FileSelected,
		FileName:       s.FileName,
		StoringToIPFS:  s.StorageRequested,
		Name:           s.Name,
		Description:    s.Description,
		InputsDisabled: s.State != StateIdle,
		ShowSubmit:     !assetReady,
		SubmitDisabled: !s.HasFile() || loading || s.AssetID != "" || s.State != StateIdle,
	}
	if form.StoringToIPFS {
		form.Notices = append(form.Notices, TextStoringToIPFS)
	}
	if form.FileSelected {
		form.Notices = append(form.Notices, TextFileSelected)
	}
	if s.HasFile() {
		form.ProgressText = ProgressText(s.Progress)
	} else {
		form.ProgressText = HintSelectFile
	}
	view.Intake = form
	return view
}
