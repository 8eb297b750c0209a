package models

// UserView is the only user shape sent to clients. Fields absent from it,
// the password hash among them, never leave the service.
type UserView struct {
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

// AuthorView is what a post carries about its author.
type AuthorView struct {
	Name string `json:"name"`
}

// PostView is the only post shape sent to clients.
type PostView struct {
	PostID  string      `json:"postId"`
	Title   string      `json:"title"`
	Content string      `json:"content"`
	Author  *AuthorView `json:"author"`
}

// LatestPosts is the response of GET /posts/latest.
type LatestPosts struct {
	Posts   []PostView `json:"posts"`
	HasMore bool       `json:"hasMore"`
	Page    int        `json:"page"`
}

// NewUserView projects u onto the exposed user fields.
func NewUserView(u *User) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{
		UserID:      u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
	}
}

// NewAuthorView projects u onto the author fields of a post.
func NewAuthorView(u *User) *AuthorView {
	if u == nil {
		return nil
	}
	return &AuthorView{Name: u.Name}
}

// NewPostView projects p onto the exposed post fields. author may be nil when
// the owning account no longer exists.
func NewPostView(p *Post, author *User) *PostView {
	if p == nil {
		return nil
	}
	return &PostView{
		PostID:  p.ID,
		Title:   p.Title,
		Content: p.Content,
		Author:  NewAuthorView(author),
	}
}
