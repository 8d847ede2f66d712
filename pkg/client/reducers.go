package client

import "slices"

type AuthState struct {
	Token           string
	IsAuthenticated bool
	Loading         bool
	User            *User
}

type ProfileState struct {
	Profile  *Profile
	Profiles []Profile
	Repos    []Repo
	Loading  bool
	Error    *APIError
}

type PostState struct {
	Posts   []Post
	Post    *Post
	Loading bool
	Error   *APIError
}

// State is the whole client state tree.
type State struct {
	Auth    AuthState
	Profile ProfileState
	Post    PostState
	Alerts  []Alert
}

// InitialState is the state before any action, seeded with a stored session.
func InitialState(sess Session) State {
	return State{
		Auth:    AuthState{Token: sess.Token, Loading: true},
		Profile: ProfileState{Loading: true},
		Post:    PostState{Loading: true},
	}
}

// Reduce applies a to every slice of s.
func Reduce(s State, a Action) State {
	return State{
		Auth:    ReduceAuth(s.Auth, a),
		Profile: ReduceProfile(s.Profile, a),
		Post:    ReducePost(s.Post, a),
		Alerts:  ReduceAlerts(s.Alerts, a),
	}
}

func ReduceAuth(s AuthState, a Action) AuthState {
	switch a.Type {
	case UserLoaded:
		user, _ := a.Payload.(*User)
		s.IsAuthenticated = true
		s.Loading = false
		s.User = user
	case RegisterSuccess, LoginSuccess:
		sess, _ := a.Payload.(Session)
		s.Token = sess.Token
		s.IsAuthenticated = true
		s.Loading = false
	case RegisterFail, LoginFail, AuthError, Logout, AccountDeleted:
		s = AuthState{}
	}
	return s
}

func ReduceProfile(s ProfileState, a Action) ProfileState {
	switch a.Type {
	case GetProfile, UpdateProfile:
		s.Profile, _ = a.Payload.(*Profile)
		s.Loading = false
	case GetProfiles:
		profiles, _ := a.Payload.([]Profile)
		s.Profiles = slices.Clone(profiles)
		s.Loading = false
	case GetRepos:
		repos, _ := a.Payload.([]Repo)
		s.Repos = slices.Clone(repos)
		s.Loading = false
	case ProfileError:
		s.Error, _ = a.Payload.(*APIError)
		s.Profile = nil
		s.Loading = false
	case ClearProfile:
		s.Profile = nil
		s.Repos = nil
		s.Loading = false
	}
	return s
}

func ReducePost(s PostState, a Action) PostState {
	switch a.Type {
	case GetPosts:
		posts, _ := a.Payload.([]Post)
		s.Posts = slices.Clone(posts)
		s.Loading = false
	case GetPost:
		s.Post, _ = a.Payload.(*Post)
		s.Loading = false
	case AddPost:
		if p, ok := a.Payload.(*Post); ok && p != nil {
			s.Posts = append([]Post{*p}, s.Posts...)
		}
		s.Loading = false
	case DeletePost:
		id, _ := a.Payload.(string)
		s.Posts = slices.DeleteFunc(slices.Clone(s.Posts), func(p Post) bool { return p.ID == id })
		if s.Post != nil && s.Post.ID == id {
			s.Post = nil
		}
		s.Loading = false
	case PostError:
		s.Error, _ = a.Payload.(*APIError)
		s.Loading = false
	case UpdateLikes:
		up, _ := a.Payload.(LikesUpdate)
		posts := slices.Clone(s.Posts)
		for i := range posts {
			if posts[i].ID == up.PostID {
				posts[i].Likes = slices.Clone(up.Likes)
			}
		}
		s.Posts = posts
		if s.Post != nil && s.Post.ID == up.PostID {
			post := *s.Post
			post.Likes = slices.Clone(up.Likes)
			s.Post = &post
		}
		s.Loading = false
	case AddComment, RemoveComment:
		up, _ := a.Payload.(CommentsUpdate)
		if s.Post != nil && s.Post.ID == up.PostID {
			post := *s.Post
			post.Comments = slices.Clone(up.Comments)
			s.Post = &post
		}
		s.Loading = false
	}
	return s
}

func ReduceAlerts(alerts []Alert, a Action) []Alert {
	switch a.Type {
	case SetAlert:
		if alert, ok := a.Payload.(Alert); ok {
			return append(slices.Clone(alerts), alert)
		}
	case RemoveAlert:
		id, _ := a.Payload.(string)
		return slices.DeleteFunc(slices.Clone(alerts), func(al Alert) bool { return al.ID == id })
	}
	return alerts
}
