package persisted

// Outcome is how the resolver settled one request
type Outcome string

// Resolution outcomes
const (
	// OutcomeQuery means the request runs with the text the client sent
	OutcomeQuery Outcome = "query"
	// OutcomeHit means the query text came from the registry
	OutcomeHit Outcome = "hit"
	// OutcomeLearned means the client's text was stored under its hash and runs
	OutcomeLearned Outcome = "learned"
	// OutcomeNotFound means an unknown hash arrived without text
	OutcomeNotFound Outcome = "not_found"
	// OutcomeNotAllowed means whitelist mode rejected the request
	OutcomeNotAllowed Outcome = "not_allowed"
	// OutcomeMalformedExtensions means extensions was a string holding invalid
	// JSON; the request is left as sent
	OutcomeMalformedExtensions Outcome = "malformed_extensions"
)

// Outcomes lists every outcome, in a stable order
var Outcomes = []Outcome{
	OutcomeQuery,
	OutcomeHit,
	OutcomeLearned,
	OutcomeNotFound,
	OutcomeNotAllowed,
	OutcomeMalformedExtensions,
}

// Resolution is the resolved form of one request. Request carries the query
// that must execute, which is the sentinel query for protocol errors.
type Resolution struct {
	Request Request
	Hash    string
	Outcome Outcome
}

// Sentinel reports whether the resolution replaced the query with an error
// sentinel.
func (r Resolution) Sentinel() bool {
	return r.Outcome == OutcomeNotFound || r.Outcome == OutcomeNotAllowed
}

// Resolve settles every request in body, in order, against the engine's
// registry. Requests later in a batch see hashes learned by earlier ones.
// body is not modified.
func (e *Engine) Resolve(body Body, onlyWhiteList bool) []Resolution {
	resolutions := make([]Resolution, 0, len(body.Requests))
	for _, req := range body.Requests {
		resolutions = append(resolutions, e.resolve(req, onlyWhiteList))
	}
	return resolutions
}

func (e *Engine) resolve(req Request, onlyWhiteList bool) Resolution {
	state, pq := decodeExtensions(req.Extensions)

	switch state {
	case extensionsAbsent:
		if onlyWhiteList {
			return e.sentinel(req, "", OutcomeNotAllowed, CodeNotAllowed)
		}
		return Resolution{Request: req, Outcome: OutcomeQuery}
	case extensionsMalformed:
		return Resolution{Request: req, Outcome: OutcomeMalformedExtensions}
	}

	if pq != nil {
		if query, ok := e.registry.Lookup(pq.Hash); ok && pq.Hash != "" {
			resolved := req
			resolved.Query = query
			return Resolution{Request: resolved, Hash: pq.Hash, Outcome: OutcomeHit}
		}

		if !onlyWhiteList {
			if req.Query == "" {
				return e.sentinel(req, pq.Hash, OutcomeNotFound, CodeNotFound)
			}
			return e.learn(req, pq.Hash)
		}
	}

	if onlyWhiteList {
		hash := ""
		if pq != nil {
			hash = pq.Hash
		}
		return e.sentinel(req, hash, OutcomeNotAllowed, CodeNotAllowed)
	}
	return Resolution{Request: req, Outcome: OutcomeQuery}
}

// learn stores the client's text under its declared hash. Text that does not
// parse is not stored; it still runs so the executor reports the syntax error.
func (e *Engine) learn(req Request, hash string) Resolution {
	if hash == "" {
		return Resolution{Request: req, Outcome: OutcomeQuery}
	}
	if err := e.registry.Learn(hash, req.Query); err != nil {
		e.logger.Debug("Query text not learned", "hash", hash, "error", err)
		return Resolution{Request: req, Hash: hash, Outcome: OutcomeQuery}
	}
	e.logger.Debug("Learned persisted query", "hash", hash)
	return Resolution{Request: req, Hash: hash, Outcome: OutcomeLearned}
}

// sentinel replaces the request with a query that makes the error field echo
// code. Operation name and variables belong to the replaced query and go too.
func (e *Engine) sentinel(req Request, hash string, outcome Outcome, code string) Resolution {
	return Resolution{
		Request: Request{
			Query:      sentinelQuery(e.errorType, code),
			Extensions: req.Extensions,
		},
		Hash:    hash,
		Outcome: outcome,
	}
}
