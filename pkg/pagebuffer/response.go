package pagebuffer

// Page is an opaque binary record produced by the upstream buffer. The
// client never inspects its contents; it only counts and forwards pages.
type Page []byte

// PagesResponse is the immutable result of one GET against the buffer
// endpoint. Token and NextToken are the server's cursor pair: Token is
// the window this response fulfills, NextToken is the cursor the client
// must request next. Complete is sticky once true: the server has no
// more pages and the client's next request must be a DELETE.
type PagesResponse struct {
	Token      uint64
	NextToken  uint64
	Pages      []Page
	Complete   bool
}

// NewPagesResponse builds a PagesResponse carrying pages, defensively
// copying the slice so the result may outlive whatever streaming buffer
// produced it.
func NewPagesResponse(token, nextToken uint64, pages []Page, complete bool) PagesResponse {
	copied := make([]Page, len(pages))
	copy(copied, pages)
	return PagesResponse{
		Token:     token,
		NextToken: nextToken,
		Pages:     copied,
		Complete:  complete,
	}
}

// EmptyPagesResponse builds a PagesResponse with no pages, for the
// "204 No Content" case: the server had nothing to offer within its wait
// window, but the token cursor and completion flag are still meaningful.
func EmptyPagesResponse(token, nextToken uint64, complete bool) PagesResponse {
	return PagesResponse{Token: token, NextToken: nextToken, Complete: complete}
}
