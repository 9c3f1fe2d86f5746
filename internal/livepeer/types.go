package livepeer

import "time"

// Asset phases reported by the pipeline for both processing and storage
const (
	PhaseWaiting    = "waiting"
	PhaseUploading  = "uploading"
	PhaseProcessing = "processing"
	PhaseReady      = "ready"
	PhaseFailed     = "failed"
)

// Config holds the pipeline API settings
type Config struct {
	APIURL  string
	APIKey  string
	Timeout time.Duration
}

// Asset is the pipeline's view of an uploaded video
type Asset struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	PlaybackID string        `json:"playbackId,omitempty"`
	Status     AssetStatus   `json:"status"`
	Storage    *AssetStorage `json:"storage,omitempty"`
}

// AssetStatus is the processing state of an asset
type AssetStatus struct {
	Phase        string  `json:"phase"`
	Progress     float64 `json:"progress,omitempty"`
	ErrorMessage string  `json:"errorMessage,omitempty"`
	UpdatedAt    int64   `json:"updatedAt,omitempty"`
}

// AssetStorage is the content-addressed export of an asset
type AssetStorage struct {
	IPFS   *IPFSStorage   `json:"ipfs,omitempty"`
	Status *StorageStatus `json:"status,omitempty"`
}

// IPFSStorage carries the exported video and its NFT metadata document
type IPFSStorage struct {
	CID         string       `json:"cid,omitempty"`
	URL         string       `json:"url,omitempty"`
	GatewayURL  string       `json:"gatewayUrl,omitempty"`
	NFTMetadata *IPFSFileRef `json:"nftMetadata,omitempty"`
}

// IPFSFileRef points at a single file on IPFS
type IPFSFileRef struct {
	CID        string `json:"cid,omitempty"`
	URL        string `json:"url,omitempty"`
	GatewayURL string `json:"gatewayUrl,omitempty"`
}

// StorageStatus is the export state of an asset
type StorageStatus struct {
	Phase        string  `json:"phase"`
	Progress     float64 `json:"progress,omitempty"`
	ErrorMessage string  `json:"errorMessage,omitempty"`
}

// Ready reports whether processing finished
func (a *Asset) Ready() bool {
	return a != nil && a.Status.Phase == PhaseReady
}

// StoragePhase returns the export phase or "" when export was never requested
func (a *Asset) StoragePhase() string {
	if a == nil || a.Storage == nil || a.Storage.Status == nil {
		return ""
	}
	return a.Storage.Status.Phase
}

type requestUploadRequest struct {
	Name string `json:"name"`
}

type requestUploadResponse struct {
	URL         string `json:"url"`
	TUSEndpoint string `json:"tusEndpoint"`
	Asset       Asset  `json:"asset"`
	Task        struct {
		ID string `json:"id"`
	} `json:"task"`
}

// UpdateAssetRequest asks the pipeline to export an asset to IPFS
type UpdateAssetRequest struct {
	Name    string         `json:"name,omitempty"`
	Storage *StorageUpdate `json:"storage,omitempty"`
}

// StorageUpdate is the storage directive of an update request
type StorageUpdate struct {
	IPFS *IPFSDirective `json:"ipfs"`
}

// IPFSDirective enables the IPFS export with NFT metadata
type IPFSDirective struct {
	Spec IPFSSpec `json:"spec"`
}

// IPFSSpec holds the metadata template values
type IPFSSpec struct {
	NFTMetadata map[string]interface{} `json:"nftMetadata,omitempty"`
}

// NewIPFSUpdate builds the update request that exports an asset with a description
func NewIPFSUpdate(name, description string) UpdateAssetRequest {
	metadata := map[string]interface{}{}
	if description != "" {
		metadata["description"] = description
	}
	return UpdateAssetRequest{
		Name: name,
		Storage: &StorageUpdate{
			IPFS: &IPFSDirective{Spec: IPFSSpec{NFTMetadata: metadata}},
		},
	}
}

// APIError is a non-2xx pipeline response
type APIError struct {
	StatusCode int      `json:"-"`
	Errors     []string `json:"errors"`
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return "livepeer: unexpected status " + statusText(e.StatusCode)
}
