package emailsvc

import (
	"sync"

	"github.com/trezcool/mtihani/core"
)

// DummyService records messages instead of sending them; test use only.
type DummyService struct {
	mu   sync.Mutex
	sent []*core.EmailMessage
}

var _ core.EmailService = (*DummyService)(nil)

func NewDummyService() *DummyService {
	return &DummyService{}
}

func (svc *DummyService) SendMessages(messages ...*core.EmailMessage) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.sent = append(svc.sent, messages...)
}

func (svc *DummyService) SentMessages() []*core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	sent := make([]*core.EmailMessage, len(svc.sent))
	copy(sent, svc.sent)
	return sent
}

func (svc *DummyService) Reset() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.sent = nil
}
