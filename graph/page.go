package graph

// Page is one page/account the credential manages, with its page-scoped
// posting credential.
type Page struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PageCredential string `json:"access_token"`
}

type ListPagesResponse struct {
	Data []Page `json:"data"`
}
