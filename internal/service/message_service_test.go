package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
)

type mockMessageRepo struct {
	created     []*models.Message
	batches     [][]models.Message
	inbox       []models.MessageDetail
	inboxTotal  int
	unread      int
	byID        *models.Message
	findErr     error
	markedRead  []string
	createErr   error
	batchErr    error
	markReadErr error
}

func (m *mockMessageRepo) Create(ctx context.Context, message *models.Message) error {
	if m.createErr != nil {
		return m.createErr
	}
	message.ID = "m1"
	m.created = append(m.created, message)
	return nil
}

func (m *mockMessageRepo) CreateBatch(ctx context.Context, messages []models.Message) error {
	if m.batchErr != nil {
		return m.batchErr
	}
	m.batches = append(m.batches, messages)
	return nil
}

func (m *mockMessageRepo) ListForRecipient(ctx context.Context, recipientID string, page, pageSize int) ([]models.MessageDetail, int, error) {
	return m.inbox, m.inboxTotal, nil
}

func (m *mockMessageRepo) FindByID(ctx context.Context, id string) (*models.Message, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.byID, nil
}

func (m *mockMessageRepo) MarkRead(ctx context.Context, id string) error {
	if m.markReadErr != nil {
		return m.markReadErr
	}
	m.markedRead = append(m.markedRead, id)
	return nil
}

func (m *mockMessageRepo) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	return m.unread, nil
}

type mockAudienceRepo struct {
	byStudent map[string][]string
	byGrade   map[string][]string
	teachers  []string
}

func (m *mockAudienceRepo) ParentIDsByStudent(ctx context.Context, studentID string) ([]string, error) {
	return m.byStudent[studentID], nil
}

func (m *mockAudienceRepo) ParentIDsByGradeLevel(ctx context.Context, gradeLevel string) ([]string, error) {
	return m.byGrade[gradeLevel], nil
}

func (m *mockAudienceRepo) TeacherIDs(ctx context.Context) ([]string, error) {
	return m.teachers, nil
}

type recordingPublisher struct {
	events []models.Event
}

func (p *recordingPublisher) Publish(event models.Event) {
	p.events = append(p.events, event)
}

type recordingEnqueuer struct {
	enqueued [][2]string
}

func (e *recordingEnqueuer) EnqueueMessageNotification(messageID, recipientID string) error {
	e.enqueued = append(e.enqueued, [2]string{messageID, recipientID})
	return nil
}

func TestMessageServiceSend(t *testing.T) {
	repo := &mockMessageRepo{}
	publisher := &recordingPublisher{}
	enqueuer := &recordingEnqueuer{}
	svc := NewMessageService(repo, &mockAudienceRepo{}, publisher, enqueuer, validator.New(), zap.NewNop())

	msg, err := svc.Send(context.Background(), "sender1", SendMessageRequest{
		RecipientID: "parent1",
		Subject:     "تنبيه",
		Content:     "محتوى الرسالة",
	})
	require.NoError(t, err)
	assert.Equal(t, "sender1", msg.SenderID)
	assert.Equal(t, "parent1", msg.RecipientID)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, models.MessageTopic("parent1"), publisher.events[0].Topic)
	assert.Equal(t, models.EventInsert, publisher.events[0].Type)
	require.Len(t, enqueuer.enqueued, 1)
	assert.Equal(t, "parent1", enqueuer.enqueued[0][1])
}

func TestMessageServiceSendValidation(t *testing.T) {
	repo := &mockMessageRepo{}
	svc := NewMessageService(repo, &mockAudienceRepo{}, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Send(context.Background(), "sender1", SendMessageRequest{RecipientID: "parent1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestMessageServiceSendGroupFanOut(t *testing.T) {
	repo := &mockMessageRepo{}
	publisher := &recordingPublisher{}
	svc := NewMessageService(repo, &mockAudienceRepo{}, publisher, nil, validator.New(), zap.NewNop())

	result, err := svc.SendGroup(context.Background(), "admin1", SendGroupRequest{
		RecipientIDs: []string{"p1", "p2", "p2", "p3", ""},
		Subject:      "إعلان",
		Content:      "اجتماع أولياء الأمور",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Sent)
	assert.Equal(t, 3, result.Recipients)
	assert.NotEmpty(t, result.BatchID)

	require.Len(t, repo.batches, 1)
	batch := repo.batches[0]
	require.Len(t, batch, 3)
	for _, msg := range batch {
		assert.Equal(t, "admin1", msg.SenderID)
		assert.Equal(t, "إعلان", msg.Subject)
		assert.Equal(t, "اجتماع أولياء الأمور", msg.Content)
	}
	assert.Len(t, publisher.events, 3)
}

func TestMessageServiceSendGroupGradeAudience(t *testing.T) {
	repo := &mockMessageRepo{}
	audience := &mockAudienceRepo{byGrade: map[string][]string{"الصف الثالث": {"p1", "p2"}}}
	svc := NewMessageService(repo, audience, nil, nil, validator.New(), zap.NewNop())

	result, err := svc.SendGroup(context.Background(), "teacher1", SendGroupRequest{
		GradeLevel: "الصف الثالث",
		Subject:    "واجب",
		Content:    "تذكير بالواجب",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Sent)
}

func TestMessageServiceSendGroupAllTeachers(t *testing.T) {
	repo := &mockMessageRepo{}
	audience := &mockAudienceRepo{teachers: []string{"t1", "t2", "t3"}}
	svc := NewMessageService(repo, audience, nil, nil, validator.New(), zap.NewNop())

	result, err := svc.SendGroup(context.Background(), "admin1", SendGroupRequest{
		AllTeachers: true,
		Subject:     "اجتماع",
		Content:     "اجتماع هيئة التدريس غداً",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Sent)
	require.Len(t, repo.batches, 1)
	assert.Equal(t, "t1", repo.batches[0][0].RecipientID)
}

func TestMessageServiceSendGroupEmptyAudience(t *testing.T) {
	repo := &mockMessageRepo{}
	svc := NewMessageService(repo, &mockAudienceRepo{}, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.SendGroup(context.Background(), "teacher1", SendGroupRequest{
		GradeLevel: "grade-with-no-parents",
		Subject:    "إعلان",
		Content:    "نص",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoRecipients.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.batches)
}

func TestMessageServiceMarkRead(t *testing.T) {
	repo := &mockMessageRepo{byID: &models.Message{ID: "m1", RecipientID: "parent1"}}
	svc := NewMessageService(repo, &mockAudienceRepo{}, nil, nil, validator.New(), zap.NewNop())

	require.NoError(t, svc.MarkRead(context.Background(), "parent1", "m1"))
	assert.Equal(t, []string{"m1"}, repo.markedRead)
}

func TestMessageServiceMarkReadWrongRecipient(t *testing.T) {
	repo := &mockMessageRepo{byID: &models.Message{ID: "m1", RecipientID: "parent1"}}
	svc := NewMessageService(repo, &mockAudienceRepo{}, nil, nil, validator.New(), zap.NewNop())

	err := svc.MarkRead(context.Background(), "intruder", "m1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.markedRead)
}

func TestMessageServiceMarkReadNotFound(t *testing.T) {
	repo := &mockMessageRepo{findErr: sql.ErrNoRows}
	svc := NewMessageService(repo, &mockAudienceRepo{}, nil, nil, validator.New(), zap.NewNop())

	err := svc.MarkRead(context.Background(), "parent1", "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMessageServiceInbox(t *testing.T) {
	repo := &mockMessageRepo{
		inbox:      []models.MessageDetail{{Message: models.Message{ID: "m1", RecipientID: "parent1"}, SenderName: "أ. خالد"}},
		inboxTotal: 1,
		unread:     1,
	}
	svc := NewMessageService(repo, &mockAudienceRepo{}, nil, nil, validator.New(), zap.NewNop())

	inbox, pagination, err := svc.ListForRecipient(context.Background(), "parent1", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, inbox.UnreadCount)
	require.Len(t, inbox.Messages, 1)
	assert.Equal(t, 1, pagination.TotalCount)
}
