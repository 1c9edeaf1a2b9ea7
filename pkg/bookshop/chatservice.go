package bookshop

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/bookworm/pkg/chatclient"
)

// ChatService is a self-contained stand-in for the browse chat backend. It
// speaks the same wire contract — envelope wrapping included — but replaces
// the vector search with naive keyword matching over the catalog, which is
// enough to exercise the widget end to end without any AI infrastructure.
type ChatService struct {
	catalog []Book
	logger  zerolog.Logger
}

func NewChatService(catalog []Book) *ChatService {
	return &ChatService{
		catalog: catalog,
		logger:  log.With().Str("component", "chat-service").Logger(),
	}
}

func (s *ChatService) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(chatclient.DefaultPath, s.handleChat)
	return mux
}

// searchCues are the words that make a message look like a content query
// rather than small talk.
var searchCues = []string{"book", "books", "find", "show", "recommend", "about", "read", "story", "novel"}

func (s *ChatService) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Message string `json:"message"`
		History string `json:"history"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	s.logger.Debug().Int("history_bytes", len(req.History)).Msg("chat request")

	payload := map[string]any{"needsVectorSearch": false}
	if s.looksLikeSearch(req.Message) {
		ids := s.search(req.Message)
		payload["needsVectorSearch"] = true
		payload["ids"] = ids
		if len(ids) == 0 {
			payload["reply"] = "I could not find any matching books."
		} else {
			payload["reply"] = fmt.Sprintf("I found %d matching book(s) and narrowed the list.", len(ids))
		}
	} else {
		payload["reply"] = "I can answer questions about the catalog and narrow the list when you ask about books."
	}

	w.Header().Set("Content-Type", "application/json")
	// Wrapped under "value", the way the real service responds.
	_ = json.NewEncoder(w).Encode(map[string]any{"value": payload})
}

func (s *ChatService) looksLikeSearch(message string) bool {
	lower := strings.ToLower(message)
	for _, cue := range searchCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}

// search matches message tokens against title, author, genre and
// description. Order of the catalog is preserved; every book appears at
// most once.
func (s *ChatService) search(message string) []string {
	tokens := tokenize(message)
	ids := []string{}
	for _, b := range s.catalog {
		haystack := strings.ToLower(b.Title + " " + b.Author + " " + b.Genre + " " + b.Description)
		for _, tok := range tokens {
			// Poor man's stemming: "whales" should still hit "whale".
			singular := strings.TrimSuffix(tok, "s")
			if strings.Contains(haystack, tok) || strings.Contains(haystack, singular) {
				ids = append(ids, b.ID)
				break
			}
		}
	}
	return ids
}

// stopwords would otherwise match half the catalog through descriptions.
var stopwords = map[string]bool{
	"book": true, "books": true, "find": true, "show": true, "about": true,
	"recommend": true, "read": true, "story": true, "novel": true,
	"what": true, "have": true, "with": true, "that": true, "this": true,
	"some": true, "please": true, "them": true, "there": true,
}

func tokenize(message string) []string {
	fields := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	out := []string{}
	for _, f := range fields {
		if len(f) < 4 || stopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}
