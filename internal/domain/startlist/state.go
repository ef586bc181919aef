package startlist

import (
	"github.com/okian/pirouette/internal/domain/errs"
	"github.com/okian/pirouette/internal/domain/model"
)

// Saved is the state after a default or manual ordering. A published list
// stays published; anything else becomes saved.
func Saved(s model.StartListStatus) model.StartListStatus {
	if s == model.StartListPublished {
		return s
	}
	return model.StartListSaved
}

// Publish makes the list public. Publishing an empty timeline is refused.
func Publish(_ model.StartListStatus, slots int) (model.StartListStatus, error) {
	if slots == 0 {
		return "", errs.State("startlist", "cannot publish an empty timeline")
	}
	return model.StartListPublished, nil
}

// Unpublish hides a published list. Other states are unchanged.
func Unpublish(s model.StartListStatus) model.StartListStatus {
	if s == model.StartListPublished {
		return model.StartListUnpublished
	}
	return Normalize(s)
}

// Normalize maps the zero status to draft.
func Normalize(s model.StartListStatus) model.StartListStatus {
	if s == "" {
		return model.StartListDraft
	}
	return s
}
