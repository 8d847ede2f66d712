package client

import (
	"github.com/google/uuid"
)

// ActionType names a state transition.
type ActionType string

const (
	RegisterSuccess ActionType = "REGISTER_SUCCESS"
	RegisterFail    ActionType = "REGISTER_FAIL"
	LoginSuccess    ActionType = "LOGIN_SUCCESS"
	LoginFail       ActionType = "LOGIN_FAIL"
	UserLoaded      ActionType = "USER_LOADED"
	AuthError       ActionType = "AUTH_ERROR"
	Logout          ActionType = "LOGOUT"
	AccountDeleted  ActionType = "ACCOUNT_DELETED"

	GetProfile    ActionType = "GET_PROFILE"
	GetProfiles   ActionType = "GET_PROFILES"
	GetRepos      ActionType = "GET_REPOS"
	UpdateProfile ActionType = "UPDATE_PROFILE"
	ClearProfile  ActionType = "CLEAR_PROFILE"
	ProfileError  ActionType = "PROFILE_ERROR"

	GetPosts      ActionType = "GET_POSTS"
	GetPost       ActionType = "GET_POST"
	AddPost       ActionType = "ADD_POST"
	DeletePost    ActionType = "DELETE_POST"
	UpdateLikes   ActionType = "UPDATE_LIKES"
	AddComment    ActionType = "ADD_COMMENT"
	RemoveComment ActionType = "REMOVE_COMMENT"
	PostError     ActionType = "POST_ERROR"

	SetAlert    ActionType = "SET_ALERT"
	RemoveAlert ActionType = "REMOVE_ALERT"
)

// Action is dispatched to the reducers. Payload type depends on Type:
//
//	REGISTER_SUCCESS, LOGIN_SUCCESS   Session
//	USER_LOADED                       *User
//	GET_PROFILE, UPDATE_PROFILE       *Profile
//	GET_PROFILES                      []Profile
//	GET_REPOS                         []Repo
//	PROFILE_ERROR, POST_ERROR         *APIError
//	GET_POSTS                         []Post
//	GET_POST, ADD_POST                *Post
//	DELETE_POST                       string (post id)
//	UPDATE_LIKES                      LikesUpdate
//	ADD_COMMENT, REMOVE_COMMENT       CommentsUpdate
//	SET_ALERT                         Alert
//	REMOVE_ALERT                      string (alert id)
type Action struct {
	Type    ActionType
	Payload any
}

// LikesUpdate carries a post's like set after a like or unlike.
type LikesUpdate struct {
	PostID string
	Likes  []Like
}

// CommentsUpdate carries a post's comments after one was added or removed.
type CommentsUpdate struct {
	PostID   string
	Comments []Comment
}

// AlertType matches the styling classes of the web client.
type AlertType string

const (
	AlertSuccess AlertType = "success"
	AlertDanger  AlertType = "danger"
)

// Alert is a transient user-facing message.
type Alert struct {
	ID   string
	Msg  string
	Type AlertType
}

// NewAlert returns a SET_ALERT action with a fresh alert id.
func NewAlert(msg string, typ AlertType) Action {
	return Action{Type: SetAlert, Payload: Alert{ID: uuid.NewString(), Msg: msg, Type: typ}}
}
