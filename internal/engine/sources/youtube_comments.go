package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Comment node kinds yielded by the Innertube feed.
const (
	KindComment       = "Comment"
	KindCommentThread = "CommentThread"
)

// CommentNode is one raw entry of the comment feed. Likes keeps the decorated
// text YouTube shows ("1.2K"). A thread carries its top-level comment in Comment.
type CommentNode struct {
	Kind    string
	Author  string
	Text    string
	Likes   string
	Comment *CommentNode
}

// CommentFeed is one page of a video's comment stream.
type CommentFeed interface {
	Items() []CommentNode
	HasNext() bool
	Next(ctx context.Context) (CommentFeed, error)
}

// --- /next response types ---

type textRuns struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (t textRuns) String() string {
	if t.SimpleText != "" {
		return t.SimpleText
	}
	var sb strings.Builder
	for _, r := range t.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

type continuationCommand struct {
	ContinuationCommand *struct {
		Token string `json:"token"`
	} `json:"continuationCommand"`
}

type continuationItemRenderer struct {
	ContinuationEndpoint *continuationCommand `json:"continuationEndpoint"`
	Button               *struct {
		ButtonRenderer struct {
			Command *continuationCommand `json:"command"`
		} `json:"buttonRenderer"`
	} `json:"button"`
}

func (r *continuationItemRenderer) token() string {
	if r == nil {
		return ""
	}
	if r.ContinuationEndpoint != nil && r.ContinuationEndpoint.ContinuationCommand != nil {
		return r.ContinuationEndpoint.ContinuationCommand.Token
	}
	if r.Button != nil && r.Button.ButtonRenderer.Command != nil && r.Button.ButtonRenderer.Command.ContinuationCommand != nil {
		return r.Button.ButtonRenderer.Command.ContinuationCommand.Token
	}
	return ""
}

type commentRenderer struct {
	AuthorText  textRuns `json:"authorText"`
	ContentText textRuns `json:"contentText"`
	VoteCount   textRuns `json:"voteCount"`
}

func (c *commentRenderer) node() CommentNode {
	return CommentNode{
		Kind:   KindComment,
		Author: c.AuthorText.String(),
		Text:   c.ContentText.String(),
		Likes:  c.VoteCount.String(),
	}
}

// commentViewModel is the current web client's comment reference. The
// comment itself arrives separately as a commentEntityPayload keyed by CommentKey.
type commentViewModel struct {
	CommentViewModel *struct {
		CommentKey string `json:"commentKey"`
	} `json:"commentViewModel"`
}

func (v *commentViewModel) key() string {
	if v == nil || v.CommentViewModel == nil {
		return ""
	}
	return v.CommentViewModel.CommentKey
}

type commentItem struct {
	CommentThreadRenderer *struct {
		Comment *struct {
			CommentRenderer *commentRenderer `json:"commentRenderer"`
		} `json:"comment"`
		CommentViewModel *commentViewModel `json:"commentViewModel"`
	} `json:"commentThreadRenderer"`
	CommentRenderer          *commentRenderer          `json:"commentRenderer"`
	CommentViewModel         *commentViewModel         `json:"commentViewModel"`
	ContinuationItemRenderer *continuationItemRenderer `json:"continuationItemRenderer"`
}

type commentEntityPayload struct {
	Properties struct {
		Content struct {
			Content string `json:"content"`
		} `json:"content"`
	} `json:"properties"`
	Author struct {
		DisplayName string `json:"displayName"`
	} `json:"author"`
	Toolbar struct {
		LikeCountNotliked string `json:"likeCountNotliked"`
	} `json:"toolbar"`
}

func (p *commentEntityPayload) node() CommentNode {
	return CommentNode{
		Kind:   KindComment,
		Author: p.Author.DisplayName,
		Text:   p.Properties.Content.Content,
		Likes:  p.Toolbar.LikeCountNotliked,
	}
}

type frameworkUpdates struct {
	EntityBatchUpdate struct {
		Mutations []struct {
			EntityKey string `json:"entityKey"`
			Payload   struct {
				CommentEntityPayload *commentEntityPayload `json:"commentEntityPayload"`
			} `json:"payload"`
		} `json:"mutations"`
	} `json:"entityBatchUpdate"`
}

// entities indexes comment payloads by entity key.
func (f *frameworkUpdates) entities() map[string]*commentEntityPayload {
	out := make(map[string]*commentEntityPayload)
	for _, m := range f.EntityBatchUpdate.Mutations {
		if m.Payload.CommentEntityPayload != nil && m.EntityKey != "" {
			out[m.EntityKey] = m.Payload.CommentEntityPayload
		}
	}
	return out
}

type watchNextResp struct {
	Contents struct {
		TwoColumnWatchNextResults struct {
			Results struct {
				Results struct {
					Contents []struct {
						ItemSectionRenderer *struct {
							SectionIdentifier string        `json:"sectionIdentifier"`
							Contents          []commentItem `json:"contents"`
						} `json:"itemSectionRenderer"`
					} `json:"contents"`
				} `json:"results"`
			} `json:"results"`
		} `json:"twoColumnWatchNextResults"`
	} `json:"contents"`
}

type continuationItems struct {
	ContinuationItems []commentItem `json:"continuationItems"`
}

type commentsContinuationResp struct {
	OnResponseReceivedEndpoints []struct {
		ReloadContinuationItemsCommand *continuationItems `json:"reloadContinuationItemsCommand"`
		AppendContinuationItemsAction  *continuationItems `json:"appendContinuationItemsAction"`
	} `json:"onResponseReceivedEndpoints"`
	FrameworkUpdates frameworkUpdates `json:"frameworkUpdates"`
}

// commentSectionToken finds the continuation token of the watch page comment section.
func commentSectionToken(resp *watchNextResp) string {
	for _, c := range resp.Contents.TwoColumnWatchNextResults.Results.Results.Contents {
		sec := c.ItemSectionRenderer
		if sec == nil || sec.SectionIdentifier != "comment-item-section" {
			continue
		}
		for _, item := range sec.Contents {
			if tok := item.ContinuationItemRenderer.token(); tok != "" {
				return tok
			}
		}
	}
	return ""
}

// commentPage is one decoded page of the comment feed.
type commentPage struct {
	session *Session
	items   []CommentNode
	next    string
}

func (p *commentPage) Items() []CommentNode { return p.items }
func (p *commentPage) HasNext() bool        { return p.next != "" }

func (p *commentPage) Next(ctx context.Context) (CommentFeed, error) {
	if p.next == "" {
		return &commentPage{session: p.session}, nil
	}
	return p.session.commentContinuation(ctx, p.next)
}

func parseCommentPage(data []byte) ([]CommentNode, string, error) {
	var resp commentsContinuationResp
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, "", fmt.Errorf("decode comments: %w", err)
	}
	entities := resp.FrameworkUpdates.entities()
	fromViewModel := func(v *commentViewModel) *CommentNode {
		if e, ok := entities[v.key()]; ok {
			n := e.node()
			return &n
		}
		return nil
	}

	var nodes []CommentNode
	next := ""
	for _, ep := range resp.OnResponseReceivedEndpoints {
		batch := ep.ReloadContinuationItemsCommand
		if batch == nil {
			batch = ep.AppendContinuationItemsAction
		}
		if batch == nil {
			continue
		}
		for _, item := range batch.ContinuationItems {
			switch {
			case item.CommentThreadRenderer != nil:
				tr := item.CommentThreadRenderer
				thread := CommentNode{Kind: KindCommentThread, Comment: fromViewModel(tr.CommentViewModel)}
				if thread.Comment == nil && tr.Comment != nil && tr.Comment.CommentRenderer != nil {
					top := tr.Comment.CommentRenderer.node()
					thread.Comment = &top
				}
				nodes = append(nodes, thread)
			case item.CommentViewModel != nil:
				if n := fromViewModel(item.CommentViewModel); n != nil {
					nodes = append(nodes, *n)
				}
			case item.CommentRenderer != nil:
				nodes = append(nodes, item.CommentRenderer.node())
			case item.ContinuationItemRenderer != nil:
				if tok := item.ContinuationItemRenderer.token(); tok != "" {
					next = tok
				}
			}
		}
	}
	return nodes, next, nil
}

func (s *Session) commentContinuation(ctx context.Context, token string) (CommentFeed, error) {
	data, err := s.post(ctx, "next", map[string]any{"continuation": token})
	if err != nil {
		return nil, err
	}
	items, next, err := parseCommentPage(data)
	if err != nil {
		return nil, err
	}
	return &commentPage{session: s, items: items, next: next}, nil
}

// Comments opens the comment stream of a video and returns its first page.
func (s *Session) Comments(ctx context.Context, videoID string) (CommentFeed, error) {
	data, err := s.post(ctx, "next", map[string]any{"videoId": videoID})
	if err != nil {
		return nil, err
	}
	var resp watchNextResp
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode next: %w", err)
	}
	token := commentSectionToken(&resp)
	if token == "" {
		return nil, ErrNoComments
	}
	return s.commentContinuation(ctx, token)
}
