package services

import (
	"context"
	"database/sql"
	"sync"

	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
	messagesrepo "github.com/dmitrijs2005/chatrelay/internal/server/repositories/messages"
	usersrepo "github.com/dmitrijs2005/chatrelay/internal/server/repositories/users"
)

// --- fakes shared by the service tests ---

type fakeUsersRepo struct {
	users map[string]*models.User

	getErr  error
	listErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.users == nil {
		f.users = make(map[string]*models.User)
	}
	f.users[u.Username] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]*models.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	result := make([]*models.User, 0, len(f.users))
	for _, u := range f.users {
		result = append(result, u)
	}
	return result, nil
}

type fakeMessagesRepo struct {
	mu        sync.Mutex
	stored    []*models.Message
	createErr error
}

func (f *fakeMessagesRepo) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.stored = append(f.stored, msg)
	return msg, nil
}

func (f *fakeMessagesRepo) FindUndelivered(ctx context.Context, recipient string) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.Message
	for _, m := range f.stored {
		if m.Recipient == recipient && !m.Delivered {
			result = append(result, m)
		}
	}
	return result, nil
}

func (f *fakeMessagesRepo) MarkDelivered(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.stored {
		if m.ID == id {
			m.Delivered = true
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeMessagesRepo) FindConversation(ctx context.Context, a, b string) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.Message
	for _, m := range f.stored {
		if (m.Sender == a && m.Recipient == b) || (m.Sender == b && m.Recipient == a) {
			result = append(result, m)
		}
	}
	return result, nil
}

func (f *fakeMessagesRepo) snapshot() []*models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.Message(nil), f.stored...)
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	m *fakeMessagesRepo
}

func (rm *fakeRepoManager) Conn() *sql.DB                       { return nil }
func (rm *fakeRepoManager) RunMigrations(context.Context) error { return nil }
func (rm *fakeRepoManager) Users() usersrepo.Repository         { return rm.u }
func (rm *fakeRepoManager) Messages() messagesrepo.Repository   { return rm.m }

type fakeRouter struct {
	delivered bool
	calls     int
}

func (f *fakeRouter) Route(ctx context.Context, sender, recipient, text string) bool {
	f.calls++
	return f.delivered
}
