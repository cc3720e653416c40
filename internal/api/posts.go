package api

import (
	"net/http"

	"github.com/mesh-intelligence/socialdb/pkg/types"
)

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.db.Posts().FindMany()
	s.reply(w, collectionPosts, "findMany", posts, err, http.StatusNotFound)
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.db.Posts().Get(id)
	s.reply(w, collectionPosts, "get", p, err, http.StatusNotFound)
}

// createPost requires the owning user to exist at request time. The store
// itself accepts posts for unknown users, so the check is not atomic with
// the insert.
func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var in types.CreatePost
	if !s.decode(w, r, defCreatePost, &in) {
		return
	}
	if _, err := s.db.Users().Get(in.UserID); err != nil {
		s.reply(w, collectionPosts, "create", nil, err, http.StatusNotFound)
		return
	}
	p, err := s.db.Posts().Create(in)
	s.reply(w, collectionPosts, "create", p, err, http.StatusBadRequest)
}

func (s *Server) changePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch types.PostPatch
	if !s.decode(w, r, defChangePost, &patch) {
		return
	}
	p, err := s.db.Posts().Change(id, patch)
	s.reply(w, collectionPosts, "change", p, err, http.StatusBadRequest)
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.db.Posts().Delete(id)
	s.reply(w, collectionPosts, "delete", p, err, http.StatusBadRequest)
}

func (s *Server) listMemberTypes(w http.ResponseWriter, r *http.Request) {
	all, err := s.db.MemberTypes().FindMany()
	s.reply(w, collectionMemberTypes, "findMany", all, err, http.StatusNotFound)
}

// getMemberType accepts any id; member type ids are catalog names, not UUIDs.
func (s *Server) getMemberType(w http.ResponseWriter, r *http.Request) {
	m, err := s.db.MemberTypes().Get(r.PathValue("id"))
	s.reply(w, collectionMemberTypes, "get", m, err, http.StatusNotFound)
}
