package brain

import (
	"context"

	"github.com/saapai/jarvis-sub001/internal/model"
)

// CapabilityHandler answers "what can you do" with a static, role-aware
// summary. No model call: the answer never varies.
type CapabilityHandler struct{}

func NewCapabilityHandler() *CapabilityHandler {
	return &CapabilityHandler{}
}

const memberCapabilities = `Here's what I can help with:
- Answer questions about upcoming events and announcements (just ask!)
- Record your reply to the current poll (yes / no / maybe)
- Chat about anything else`

const adminCapabilities = memberCapabilities + `

As an organizer you can also:
- Draft announcements and polls with me, then say "send" to broadcast
- Update an event I already announced ("move Friday's dinner to 8pm")
- Teach me facts to remember ("FYI dues are $40 this semester")`

func (h *CapabilityHandler) Handle(_ context.Context, req Request) (Response, error) {
	reply := memberCapabilities
	if req.Member != nil && req.Member.Role == model.RoleAdmin {
		reply = adminCapabilities
	}
	return Response{
		Reply:    reply,
		Metadata: &model.MessageMetadata{Action: model.ActionCapabilityQuery},
	}, nil
}
