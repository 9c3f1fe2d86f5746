package mint

import (
	"time"

	"github.com/google/uuid"
)

// Progress is the coarse creation progress shown under the drop zone
type Progress struct {
	Phase   string `gorm:"type:varchar(32)" json:"phase" msgpack:"phase"`
	Percent int    `json:"percent" msgpack:"percent"`
}

// Progress phases
const (
	ProgressWaiting    = "waiting"
	ProgressUploading  = "uploading"
	ProgressProcessing = "processing"
	ProgressFailed     = "failed"
)

// StorageRecord is the IPFS export of the created asset
type StorageRecord struct {
	Phase              string `gorm:"type:varchar(32)" json:"phase" msgpack:"phase"`
	CID                string `gorm:"type:varchar(128)" json:"cid" msgpack:"cid"`
	URL                string `gorm:"type:text" json:"url" msgpack:"url"`
	GatewayURL         string `gorm:"type:text" json:"gatewayUrl" msgpack:"gatewayUrl"`
	MetadataURL        string `gorm:"type:text" json:"metadataUrl" msgpack:"metadataUrl"`
	MetadataGatewayURL string `gorm:"type:text" json:"metadataGatewayUrl" msgpack:"metadataGatewayUrl"`
}

// ContractCall is the mint transaction submitted for the stored asset
type ContractCall struct {
	Recipient string `gorm:"type:varchar(64)" json:"recipient" msgpack:"recipient"`
	TokenURI  string `gorm:"type:text" json:"tokenUri" msgpack:"tokenUri"`
	TxHash    string `gorm:"type:varchar(80);index" json:"txHash" msgpack:"txHash"`
	Success   bool   `json:"success" msgpack:"success"`
	Error     string `gorm:"type:text" json:"error" msgpack:"error"`
}

// Session is the consolidated record of one wallet's mint attempt
type Session struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id" msgpack:"id"`
	WalletAddress string    `gorm:"type:varchar(64);index;not null" json:"walletAddress" msgpack:"walletAddress"`

	FileName     string `gorm:"type:varchar(255)" json:"fileName" msgpack:"fileName"`
	FilePath     string `gorm:"type:text" json:"-" msgpack:"-"`
	FileSize     int64  `json:"fileSize" msgpack:"fileSize"`
	ContentType  string `gorm:"type:varchar(100)" json:"contentType" msgpack:"contentType"`
	FileSelected bool   `json:"fileSelected" msgpack:"fileSelected"`
	ArchiveURL   string `gorm:"type:text" json:"archiveUrl,omitempty" msgpack:"archiveUrl,omitempty"`

	Name        string `gorm:"type:varchar(255)" json:"name" msgpack:"name"`
	Description string `gorm:"type:text" json:"description" msgpack:"description"`

	State       State  `gorm:"type:varchar(32);index;not null" json:"state" msgpack:"state"`
	FailedStage Stage  `gorm:"type:varchar(32)" json:"failedStage,omitempty" msgpack:"failedStage,omitempty"`
	Error       string `gorm:"type:text" json:"error,omitempty" msgpack:"error,omitempty"`

	AssetID          string        `gorm:"type:varchar(64);index" json:"assetId,omitempty" msgpack:"assetId,omitempty"`
	AssetPhase       string        `gorm:"type:varchar(32)" json:"assetPhase,omitempty" msgpack:"assetPhase,omitempty"`
	Progress         Progress      `gorm:"embedded;embeddedPrefix:progress_" json:"progress" msgpack:"progress"`
	StorageRequested bool          `json:"storageRequested" msgpack:"storageRequested"`
	Storage          StorageRecord `gorm:"embedded;embeddedPrefix:storage_" json:"storage" msgpack:"storage"`
	Call             ContractCall  `gorm:"embedded;embeddedPrefix:call_" json:"call" msgpack:"call"`

	CreatedAt time.Time `json:"createdAt" msgpack:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" msgpack:"updatedAt"`
}

// TableName specifies the table name for sessions
func (Session) TableName() string {
	return "mint_sessions"
}

// NewSession opens an idle session for wallet
func NewSession(wallet string, now time.Time) *Session {
	return &Session{
		ID:            uuid.New(),
		WalletAddress: wallet,
		State:         StateIdle,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// HasFile reports whether an accepted file is attached
func (s *Session) HasFile() bool {
	return s.FilePath != ""
}

// Transition is one recorded state change of a session
type Transition struct {
	SessionID     string    `json:"sessionId" msgpack:"sessionId"`
	WalletAddress string    `json:"walletAddress,omitempty" msgpack:"walletAddress,omitempty"`
	From          State     `json:"from" msgpack:"from"`
	To            State     `json:"to" msgpack:"to"`
	Stage         Stage     `json:"stage,omitempty" msgpack:"stage,omitempty"`
	Message       string    `json:"message,omitempty" msgpack:"message,omitempty"`
	At            time.Time `json:"at" msgpack:"at"`
}
