package client

import (
	"context"
	"errors"
	"sync"
)

// Store runs API calls through a Client and folds their results into State.
// Failures are dispatched as error actions and alerts, and also returned to
// the caller.
type Store struct {
	api *Client

	mu    sync.RWMutex
	state State
}

// NewStore creates a store for sess. Pass the zero Session when logged out.
func NewStore(api *Client, sess Session) *Store {
	return &Store{api: api, state: InitialState(sess)}
}

// Dispatch applies a to the current state.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	s.mu.Unlock()
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Session returns the session the store currently acts as.
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Session{Token: s.state.Auth.Token}
}

// DrainAlerts returns pending alerts and removes them from state.
func (s *Store) DrainAlerts() []Alert {
	alerts := s.State().Alerts
	for _, a := range alerts {
		s.Dispatch(Action{Type: RemoveAlert, Payload: a.ID})
	}
	return alerts
}

func (s *Store) alert(msg string, typ AlertType) {
	s.Dispatch(NewAlert(msg, typ))
}

// alertErrors turns each API error message into a danger alert.
func (s *Store) alertErrors(err error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		s.alert(err.Error(), AlertDanger)
		return
	}
	for _, m := range apiErr.Errors {
		s.alert(m.Msg, AlertDanger)
	}
}

func asAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{Errors: []Message{{Msg: err.Error()}}}
}

func (s *Store) LoadUser(ctx context.Context) error {
	user, err := s.api.LoadUser(ctx, s.Session())
	if err != nil {
		s.Dispatch(Action{Type: AuthError})
		return err
	}
	s.Dispatch(Action{Type: UserLoaded, Payload: user})
	return nil
}

func (s *Store) Register(ctx context.Context, in RegisterInput) error {
	sess, err := s.api.Register(ctx, Session{}, in)
	if err != nil {
		s.alertErrors(err)
		s.Dispatch(Action{Type: RegisterFail})
		return err
	}
	s.Dispatch(Action{Type: RegisterSuccess, Payload: sess})
	return s.LoadUser(ctx)
}

func (s *Store) Login(ctx context.Context, in LoginInput) error {
	sess, err := s.api.Login(ctx, Session{}, in)
	if err != nil {
		s.alertErrors(err)
		s.Dispatch(Action{Type: LoginFail})
		return err
	}
	s.Dispatch(Action{Type: LoginSuccess, Payload: sess})
	return s.LoadUser(ctx)
}

// Logout revokes the token server side when possible and always clears the
// local session.
func (s *Store) Logout(ctx context.Context) {
	if sess := s.Session(); sess.Authenticated() {
		_ = s.api.Logout(ctx, sess)
	}
	s.Dispatch(Action{Type: ClearProfile})
	s.Dispatch(Action{Type: Logout})
}

func (s *Store) profileError(err error) error {
	s.Dispatch(Action{Type: ProfileError, Payload: asAPIError(err)})
	return err
}

func (s *Store) GetCurrentProfile(ctx context.Context) error {
	p, err := s.api.MyProfile(ctx, s.Session())
	if err != nil {
		return s.profileError(err)
	}
	s.Dispatch(Action{Type: GetProfile, Payload: p})
	return nil
}

func (s *Store) GetProfiles(ctx context.Context) error {
	s.Dispatch(Action{Type: ClearProfile})
	profiles, err := s.api.Profiles(ctx, s.Session())
	if err != nil {
		return s.profileError(err)
	}
	s.Dispatch(Action{Type: GetProfiles, Payload: profiles})
	return nil
}

func (s *Store) GetProfileByID(ctx context.Context, userID string) error {
	p, err := s.api.ProfileByUser(ctx, s.Session(), userID)
	if err != nil {
		return s.profileError(err)
	}
	s.Dispatch(Action{Type: GetProfile, Payload: p})
	return nil
}

func (s *Store) GetGithubRepos(ctx context.Context, username string) error {
	repos, err := s.api.GithubRepos(ctx, s.Session(), username)
	if err != nil {
		return s.profileError(err)
	}
	s.Dispatch(Action{Type: GetRepos, Payload: repos})
	return nil
}

// SaveProfile creates the caller's profile, or updates it when edit is set.
func (s *Store) SaveProfile(ctx context.Context, in ProfileInput, edit bool) error {
	p, err := s.api.SaveProfile(ctx, s.Session(), in)
	if err != nil {
		s.alertErrors(err)
		return s.profileError(err)
	}
	s.Dispatch(Action{Type: GetProfile, Payload: p})
	if edit {
		s.alert("Profile Updated", AlertSuccess)
	} else {
		s.alert("Profile Created", AlertSuccess)
	}
	return nil
}

func (s *Store) AddExperience(ctx context.Context, in ExperienceInput) error {
	p, err := s.api.AddExperience(ctx, s.Session(), in)
	if err != nil {
		s.alertErrors(err)
		return s.profileError(err)
	}
	s.Dispatch(Action{Type: UpdateProfile, Payload: p})
	s.alert("Experience Added", AlertSuccess)
	return nil
}

func (s *Store) AddEducation(ctx context.Context, in EducationInput) error {
	p, err := s.api.AddEducation(ctx, s.Session(), in)
	if err != nil {
		s.alertErrors(err)
		return s.profileError(err)
	}
	s.Dispatch(Action{Type: UpdateProfile, Payload: p})
	s.alert("Education Added", AlertSuccess)
	return nil
}

func (s *Store) DeleteExperience(ctx context.Context, expID string) error {
	p, err := s.api.RemoveExperience(ctx, s.Session(), expID)
	if err != nil {
		return s.profileError(err)
	}
	s.Dispatch(Action{Type: UpdateProfile, Payload: p})
	s.alert("Experience Removed", AlertSuccess)
	return nil
}

func (s *Store) DeleteEducation(ctx context.Context, eduID string) error {
	p, err := s.api.RemoveEducation(ctx, s.Session(), eduID)
	if err != nil {
		return s.profileError(err)
	}
	s.Dispatch(Action{Type: UpdateProfile, Payload: p})
	s.alert("Education Removed", AlertSuccess)
	return nil
}

// DeleteAccount permanently removes the account. Callers confirm first.
func (s *Store) DeleteAccount(ctx context.Context) error {
	if err := s.api.DeleteAccount(ctx, s.Session()); err != nil {
		return s.profileError(err)
	}
	s.Dispatch(Action{Type: ClearProfile})
	s.Dispatch(Action{Type: AccountDeleted})
	s.alert("Your account has been permanently deleted", AlertSuccess)
	return nil
}

func (s *Store) postError(err error) error {
	s.Dispatch(Action{Type: PostError, Payload: asAPIError(err)})
	return err
}

func (s *Store) GetPosts(ctx context.Context) error {
	posts, err := s.api.Posts(ctx, s.Session())
	if err != nil {
		return s.postError(err)
	}
	s.Dispatch(Action{Type: GetPosts, Payload: posts})
	return nil
}

func (s *Store) GetPost(ctx context.Context, postID string) error {
	post, err := s.api.Post(ctx, s.Session(), postID)
	if err != nil {
		return s.postError(err)
	}
	s.Dispatch(Action{Type: GetPost, Payload: post})
	return nil
}

func (s *Store) AddPost(ctx context.Context, text string) error {
	post, err := s.api.CreatePost(ctx, s.Session(), text)
	if err != nil {
		s.alertErrors(err)
		return s.postError(err)
	}
	s.Dispatch(Action{Type: AddPost, Payload: post})
	s.alert("Post Created", AlertSuccess)
	return nil
}

func (s *Store) DeletePost(ctx context.Context, postID string) error {
	if err := s.api.DeletePost(ctx, s.Session(), postID); err != nil {
		return s.postError(err)
	}
	s.Dispatch(Action{Type: DeletePost, Payload: postID})
	s.alert("Post Removed", AlertSuccess)
	return nil
}

func (s *Store) AddLike(ctx context.Context, postID string) error {
	likes, err := s.api.Like(ctx, s.Session(), postID)
	if err != nil {
		return s.postError(err)
	}
	s.Dispatch(Action{Type: UpdateLikes, Payload: LikesUpdate{PostID: postID, Likes: likes}})
	return nil
}

func (s *Store) RemoveLike(ctx context.Context, postID string) error {
	likes, err := s.api.Unlike(ctx, s.Session(), postID)
	if err != nil {
		return s.postError(err)
	}
	s.Dispatch(Action{Type: UpdateLikes, Payload: LikesUpdate{PostID: postID, Likes: likes}})
	return nil
}

func (s *Store) AddComment(ctx context.Context, postID, text string) error {
	comments, err := s.api.AddComment(ctx, s.Session(), postID, text)
	if err != nil {
		s.alertErrors(err)
		return s.postError(err)
	}
	s.Dispatch(Action{Type: AddComment, Payload: CommentsUpdate{PostID: postID, Comments: comments}})
	s.alert("Comment Added", AlertSuccess)
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, postID, commentID string) error {
	comments, err := s.api.RemoveComment(ctx, s.Session(), postID, commentID)
	if err != nil {
		return s.postError(err)
	}
	s.Dispatch(Action{Type: RemoveComment, Payload: CommentsUpdate{PostID: postID, Comments: comments}})
	s.alert("Comment Removed", AlertSuccess)
	return nil
}
