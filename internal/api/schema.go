package api

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/mesh-intelligence/socialdb/pkg/types"
)

// Definition names in bodySchemas.
const (
	defCreateUser    = "#CreateUser"
	defChangeUser    = "#ChangeUser"
	defSubscribe     = "#Subscribe"
	defCreateProfile = "#CreateProfile"
	defChangeProfile = "#ChangeProfile"
	defCreatePost    = "#CreatePost"
	defChangePost    = "#ChangePost"
)

// bodySchemas describes every request body the API accepts. Definitions are
// closed, so unknown fields are rejected.
const bodySchemas = `
#UUID:     =~"^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$"
#NonEmpty: string & =~"\\S"

#CreateUser: {
	firstName: #NonEmpty
	lastName:  #NonEmpty
	email:     #NonEmpty
}

#ChangeUser: {
	firstName?: #NonEmpty
	lastName?:  #NonEmpty
	email?:     #NonEmpty
}

#Subscribe: {
	userId: #UUID
}

#CreateProfile: {
	userId:       #UUID
	memberTypeId: #NonEmpty
	isMale:       bool
	age:          int & >=0
}

#ChangeProfile: {
	memberTypeId?: #NonEmpty
	isMale?:       bool
	age?:          int & >=0
}

#CreatePost: {
	userId:  #UUID
	title:   #NonEmpty
	content: #NonEmpty
}

#ChangePost: {
	title?:   #NonEmpty
	content?: #NonEmpty
}
`

// maxBodyBytes bounds request bodies read by Decode.
const maxBodyBytes = 1 << 20

// Schemas validates JSON request bodies against the CUE definitions above.
// A cue.Context is not safe for concurrent use, so mu serialises access.
type Schemas struct {
	mu   sync.Mutex
	ctx  *cue.Context
	defs cue.Value
}

// NewSchemas compiles the request body definitions.
func NewSchemas() (*Schemas, error) {
	ctx := cuecontext.New()
	defs := ctx.CompileString(bodySchemas, cue.Filename("schemas.cue"))
	if err := defs.Err(); err != nil {
		return nil, fmt.Errorf("compiling request schemas: %w", err)
	}
	return &Schemas{ctx: ctx, defs: defs}, nil
}

// Decode reads a JSON body, checks it against definition def and unmarshals
// it into out. Schema violations wrap types.ErrValidation.
func (s *Schemas) Decode(def string, body io.Reader, out any) error {
	data, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: reading body: %v", types.ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	schema := s.defs.LookupPath(cue.ParsePath(def))
	if !schema.Exists() {
		return fmt.Errorf("unknown schema %s", def)
	}
	v := s.ctx.CompileBytes(data, cue.Filename("body.json"))
	if err := v.Err(); err != nil {
		return fmt.Errorf("%w: malformed body: %v", types.ErrValidation, err)
	}
	if k := v.IncompleteKind(); k != cue.StructKind {
		return fmt.Errorf("%w: body must be a JSON object", types.ErrValidation)
	}
	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %v", types.ErrValidation, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", types.ErrValidation, err)
	}
	return nil
}
