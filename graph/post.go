package graph

import "fmt"

type CreatePostResponse struct {
	ID string `json:"id"`
}

/*
CreatePhotoResponse comes back from the photos endpoint. ID is always the
photo object's ID; PostID is additionally set when the photo was published
directly as a post (the single-image path).
*/
type CreatePhotoResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id,omitempty"`
}

// AttachedMedia references a staged photo in a feed post.
type AttachedMedia struct {
	MediaFBID string `json:"media_fbid"`
}

// APIError is the inner error object of the platform's error envelope.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

type ErrorResponse struct {
	StatusCode int      `json:"-"`
	Detail     APIError `json:"error"`
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("graph API error %d (%s): %s", e.Detail.Code, e.Detail.Type, e.Detail.Message)
}
