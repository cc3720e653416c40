package api

import (
	"net/http"

	"github.com/mesh-intelligence/socialdb/pkg/types"
)

type subscribeBody struct {
	UserID string `json:"userId"`
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.db.Users().FindMany()
	s.reply(w, collectionUsers, "findMany", users, err, http.StatusNotFound)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := s.db.Users().Get(id)
	s.reply(w, collectionUsers, "get", u, err, http.StatusNotFound)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var in types.CreateUser
	if !s.decode(w, r, defCreateUser, &in) {
		return
	}
	u, err := s.db.Users().Create(in)
	s.reply(w, collectionUsers, "create", u, err, http.StatusBadRequest)
}

func (s *Server) changeUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch types.UserPatch
	if !s.decode(w, r, defChangeUser, &patch) {
		return
	}
	u, err := s.db.Users().Change(id, patch)
	s.reply(w, collectionUsers, "change", u, err, http.StatusBadRequest)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := s.db.Users().Delete(id)
	s.reply(w, collectionUsers, "delete", u, err, http.StatusBadRequest)
}

// subscribeTo makes the user in the body follow the user in the path.
func (s *Server) subscribeTo(w http.ResponseWriter, r *http.Request) {
	target, ok := pathID(w, r)
	if !ok {
		return
	}
	var body subscribeBody
	if !s.decode(w, r, defSubscribe, &body) {
		return
	}
	u, err := s.db.Users().SubscribeTo(body.UserID, target)
	s.reply(w, collectionUsers, "subscribeTo", u, err, http.StatusBadRequest)
}

// unsubscribeFrom removes the follow edge from the body user to the path user.
func (s *Server) unsubscribeFrom(w http.ResponseWriter, r *http.Request) {
	target, ok := pathID(w, r)
	if !ok {
		return
	}
	var body subscribeBody
	if !s.decode(w, r, defSubscribe, &body) {
		return
	}
	u, err := s.db.Users().UnsubscribeFrom(body.UserID, target)
	s.reply(w, collectionUsers, "unsubscribeFrom", u, err, http.StatusBadRequest)
}

func (s *Server) followers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	users, err := s.db.Users().Followers(id)
	s.reply(w, collectionUsers, "followers", users, err, http.StatusNotFound)
}

func (s *Server) subscriptions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	users, err := s.db.Users().Subscriptions(id)
	s.reply(w, collectionUsers, "subscriptions", users, err, http.StatusNotFound)
}
