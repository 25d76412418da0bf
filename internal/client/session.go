package client

import (
	"context"
	"io"

	"github.com/templui/calldesk/internal/model"
)

// Session keeps a local copy of the caller's calls and lookup lists. Every
// mutation re-fetches the whole call collection so the copy never drifts.
type Session struct {
	api     *Client
	Calls   []*model.Call
	Options *model.DropdownOptions
}

func NewSession(api *Client) *Session {
	return &Session{
		api:     api,
		Calls:   []*model.Call{},
		Options: &model.DropdownOptions{ContactPersons: []string{}, Operators: []string{}},
	}
}

// Load fetches calls and lookup lists.
func (s *Session) Load(ctx context.Context) error {
	err := s.RefreshCalls(ctx)
	if err != nil {
		return err
	}
	return s.RefreshOptions(ctx)
}

func (s *Session) RefreshCalls(ctx context.Context) error {
	calls, err := s.api.Calls(ctx)
	if err != nil {
		return err
	}
	s.Calls = calls
	return nil
}

func (s *Session) RefreshOptions(ctx context.Context) error {
	options, err := s.api.DropdownOptions(ctx)
	if err != nil {
		return err
	}
	s.Options = options
	return nil
}

// Call finds a call in the local copy by full id or unique id prefix.
func (s *Session) Call(idOrPrefix string) (*model.Call, bool) {
	var found *model.Call
	for _, c := range s.Calls {
		if c.ID == idOrPrefix {
			return c, true
		}
		if len(idOrPrefix) >= 4 && len(c.ID) > len(idOrPrefix) && c.ID[:len(idOrPrefix)] == idOrPrefix {
			if found != nil {
				return nil, false
			}
			found = c
		}
	}
	return found, found != nil
}

func (s *Session) CreateCall(ctx context.Context, in CreateCall) (*model.Call, error) {
	call, err := s.api.CreateCall(ctx, in)
	if err != nil {
		return nil, err
	}
	return call, s.RefreshCalls(ctx)
}

func (s *Session) UpdateStatus(ctx context.Context, callID, status string) (*model.Call, error) {
	call, err := s.api.UpdateStatus(ctx, callID, status)
	if err != nil {
		return nil, err
	}
	return call, s.RefreshCalls(ctx)
}

func (s *Session) DeleteCall(ctx context.Context, callID string) error {
	err := s.api.DeleteCall(ctx, callID)
	if err != nil {
		return err
	}
	return s.RefreshCalls(ctx)
}

func (s *Session) AddComment(ctx context.Context, callID, text string) (*model.Comment, error) {
	comment, err := s.api.AddComment(ctx, callID, text)
	if err != nil {
		return nil, err
	}
	return comment, s.RefreshCalls(ctx)
}

func (s *Session) UploadAttachment(ctx context.Context, commentID, filename string, content io.Reader) (*model.Attachment, error) {
	attachment, err := s.api.UploadAttachment(ctx, commentID, filename, content)
	if err != nil {
		return nil, err
	}
	return attachment, s.RefreshCalls(ctx)
}

func (s *Session) DeleteAttachment(ctx context.Context, attachmentID string) error {
	err := s.api.DeleteAttachment(ctx, attachmentID)
	if err != nil {
		return err
	}
	return s.RefreshCalls(ctx)
}

func (s *Session) AddLookup(ctx context.Context, kind, name string) (*model.LookupEntry, error) {
	entry, err := s.api.AddLookup(ctx, kind, name)
	if err != nil {
		return nil, err
	}
	return entry, s.Load(ctx)
}

func (s *Session) DeleteLookup(ctx context.Context, kind, name string) error {
	err := s.api.DeleteLookup(ctx, kind, name)
	if err != nil {
		return err
	}
	return s.Load(ctx)
}
