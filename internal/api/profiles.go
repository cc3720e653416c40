package api

import (
	"net/http"

	"github.com/mesh-intelligence/socialdb/pkg/types"
)

func (s *Server) listProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.db.Profiles().FindMany()
	s.reply(w, collectionProfiles, "findMany", profiles, err, http.StatusNotFound)
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.db.Profiles().Get(id)
	s.reply(w, collectionProfiles, "get", p, err, http.StatusNotFound)
}

func (s *Server) createProfile(w http.ResponseWriter, r *http.Request) {
	var in types.CreateProfile
	if !s.decode(w, r, defCreateProfile, &in) {
		return
	}
	p, err := s.db.Profiles().Create(in)
	s.reply(w, collectionProfiles, "create", p, err, http.StatusBadRequest)
}

func (s *Server) changeProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch types.ProfilePatch
	if !s.decode(w, r, defChangeProfile, &patch) {
		return
	}
	p, err := s.db.Profiles().Change(id, patch)
	s.reply(w, collectionProfiles, "change", p, err, http.StatusBadRequest)
}

func (s *Server) deleteProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.db.Profiles().Delete(id)
	s.reply(w, collectionProfiles, "delete", p, err, http.StatusBadRequest)
}
