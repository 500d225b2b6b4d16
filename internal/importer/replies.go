package importer

// ReplyRef is the threading target resolved for a reply: the topic it belongs
// to and, when the parent is not the topic's opening post, the post number
// the reply answers.
type ReplyRef struct {
	TopicID           uint
	ReplyToPostNumber *int
}

// ReplyLinker resolves a source comment's parent import id to target
// threading coordinates using only the identity map, so no second source
// query is needed to wire up forward references.
type ReplyLinker struct {
	ids *IdentityMap
}

// Link resolves the parent import id. A parent at post number 1 is the
// topic's own opening post, so the reply threads at the top level with no
// explicit reply-to marker. A missing parent returns ok == false; the caller
// still creates the reply as a plain topic reply when it has topic context,
// since only a missing topic warrants a skip.
func (l *ReplyLinker) Link(parentImportID any) (ReplyRef, bool) {
	pos, ok := l.ids.TopicLookup(parentImportID)
	if !ok {
		return ReplyRef{}, false
	}
	ref := ReplyRef{TopicID: pos.TopicID}
	if pos.PostNumber > 1 {
		n := pos.PostNumber
		ref.ReplyToPostNumber = &n
	}
	return ref, true
}
