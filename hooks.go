package razorblog

// CommentHook is invoked synchronously after a comment has been fully
// populated and before it is persisted. Implementations may mutate the
// comment or return an error to veto the save.
type CommentHook interface {
	OnSaveComment(comment *Comment) error
}

// noopCommentHook is the default hook.
type noopCommentHook struct{}

func (noopCommentHook) OnSaveComment(*Comment) error { return nil }
