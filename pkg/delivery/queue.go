package delivery

import (
	"context"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"notification-hub/relay/pkg/domain"
)

/* -------------------- GORM MODEL -------------------- */

// mailModel is one queued mail document. created_at is assigned by postgres;
// rows are never updated or deleted by the relay.
type mailModel struct {
	ID         string                                 `gorm:"primaryKey;type:uuid"`
	Recipients pq.StringArray                         `gorm:"type:text[];not null"`
	From       string                                 `gorm:"column:from_address;type:varchar(320);not null"`
	ReplyTo    string                                 `gorm:"type:varchar(320)"`
	Message    datatypes.JSONType[domain.MailMessage] `gorm:"type:jsonb;not null"`
	Metadata   datatypes.JSONMap                      `gorm:"type:jsonb;default:'{}'::jsonb"`
	CreatedAt  time.Time                              `gorm:"not null;autoCreateTime:false;default:now();index"`
}

func (mailModel) TableName() string { return "mail" }

func toMailModel(doc domain.QueuedMail) *mailModel {
	return &mailModel{
		ID:         doc.ID,
		Recipients: pq.StringArray(doc.Recipients),
		From:       doc.From,
		ReplyTo:    doc.ReplyTo,
		Message:    datatypes.NewJSONType(doc.Message),
		Metadata:   datatypes.JSONMap(doc.Metadata),
	}
}

// Queue appends the mail document to the "mail" table for an external
// worker to send.
type Queue struct {
	DB *gorm.DB
}

func (q *Queue) Name() string { return "queue" }

// Migrate creates the mail table when it does not exist yet.
func (q *Queue) Migrate(ctx context.Context) error {
	return q.DB.WithContext(ctx).AutoMigrate(&mailModel{})
}

func (q *Queue) Deliver(ctx context.Context, env domain.Envelope) error {
	if q.DB == nil || len(env.Recipients) == 0 {
		return ErrIncomplete
	}
	return q.insert(ctx, NewQueuedMail(env)).Error
}

func (q *Queue) insert(ctx context.Context, doc domain.QueuedMail) *gorm.DB {
	return q.DB.WithContext(ctx).Create(toMailModel(doc))
}
