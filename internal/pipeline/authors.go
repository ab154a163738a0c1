package pipeline

import "kbqa/internal/model"

// ResolveAuthor maps a translation's last-editor reference to an author
// identity using the page's embedded user list.
//
// The platform emits a sentinel editor id for content-block edits; those
// resolve to the content-block placeholder. An editor id missing from the
// embedded list resolves to the unresolved placeholder. Both placeholders
// carry the configured API-user id but keep distinct Kinds, so they never
// collapse into each other or into a real author with the same name.
func ResolveAuthor(editorID int64, users []model.User, apiUserID int64) model.Author {
	if editorID == model.ContentBlockEditorID {
		return model.Author{
			Name: model.ContentBlockAuthorName,
			ID:   apiUserID,
			Kind: model.AuthorContentBlock,
		}
	}
	for _, u := range users {
		if u.ID == editorID {
			return model.Author{Name: u.Name, ID: u.ID, Kind: model.AuthorResolved}
		}
	}
	return model.Author{
		Name: model.UnresolvedAuthorName,
		ID:   apiUserID,
		Kind: model.AuthorUnresolved,
	}
}
