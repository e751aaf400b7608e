package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/datadesk/pkg/domain"
	"github.com/aretw0/datadesk/pkg/navigation"
	"github.com/aretw0/datadesk/pkg/query"
)

// handler applies one menu action to the session copy.
type handler func(s *domain.Session, out *outbox) error

func (c *Controller) buildActions() map[string]handler {
	actions := map[string]handler{
		TokenSorting:            open(func(*domain.Session) navigation.Frame { return sortFrame() }),
		TokenFiltration:         open(func(*domain.Session) navigation.Frame { return filterFrame() }),
		TokenUniversalSort:      open(func(*domain.Session) navigation.Frame { return sortFieldFrame() }),
		TokenDetailedFiltering:  open(func(*domain.Session) navigation.Frame { return filterFieldFrame() }),
		TokenSortTestDateAsc:    sortBy(domain.FieldTestDate, false),
		TokenSortTestDateDesc:   sortBy(domain.FieldTestDate, true),
		TokenSortAscending:      sortByChosen(false),
		TokenSortDescending:     sortByChosen(true),
		TokenFilterDistrict:     quickFilter(domain.FieldDistrict),
		TokenFilterOwner:        quickFilter(domain.FieldOwner),
		TokenFilterAdmAreaOwner: quickFilter(domain.FieldAdmAreaAndOwner),
		TokenFilterSameField:    secondFilterField(""),
		TokenSendJSON:           c.export(TokenSendJSON),
		TokenSendCSV:            c.export(TokenSendCSV),
		TokenBack:               back,
	}
	for _, f := range domain.Fields() {
		actions[TokenSortFieldPrefix+string(f)] = chooseSortField(f)
		actions[TokenFilterFieldPrefix+string(f)] = firstFilterField(f)
		actions[TokenFilterSecondFieldPrefix+string(f)] = secondFilterField(f)
	}
	return actions
}

func (c *Controller) action(s *domain.Session, token string, out *outbox) error {
	h, ok := c.actions[token]
	if !ok {
		out.text(fmt.Sprintf(msgUnknownToken, token))
		return nil
	}
	if s.State.Stage == domain.StageMessage {
		out.text(msgUploadFirst)
		return nil
	}
	return h(s, out)
}

// command answers text in the Message stage.
func (c *Controller) command(text string, out *outbox) {
	switch commandName(text) {
	case "/start":
		out.text(msgWelcome)
	case "/help":
		out.text(msgHelp)
	default:
		out.text(msgUnknownCommand, "/start", "/help")
	}
}

// menuText answers text in the Document stage.
func (c *Controller) menuText(text string, out *outbox) {
	switch commandName(text) {
	case "/help":
		out.text(msgHelp)
	case "/start":
		out.text(msgWelcome)
	default:
		out.text(msgMenuMode)
	}
}

// commandName extracts "/cmd" from "/cmd@bot args".
func commandName(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	name, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(name)
}

func (c *Controller) upload(s *domain.Session, ev domain.Event, out *outbox) error {
	if len(ev.Data) > c.maxUpload {
		c.metrics.ObserveUpload("rejected")
		return &CollaboratorError{
			Op:  "upload",
			Err: fmt.Errorf("%w: size=%d limit=%d", ErrUploadTooLarge, len(ev.Data), c.maxUpload),
		}
	}
	ds, err := c.codec.Decode(ev.Format, ev.Data)
	if err != nil {
		c.metrics.ObserveUpload("rejected")
		return &CollaboratorError{Op: "upload", Err: err}
	}

	root := rootFrame()
	s.State = domain.SessionState{Stage: domain.StageDocument, Dataset: ds}
	s.Navigation.Reset(root)

	out.text(fmt.Sprintf(msgUploadOK, len(ds)))
	out.menu(root, domain.RenderNew)
	c.metrics.ObserveUpload("accepted")
	return nil
}

func (c *Controller) filterInput(s *domain.Session, text string, out *outbox) error {
	f1, f2 := filterFields(s.State)
	res, err := query.Filter(s.State.Dataset, f1, text, f2)
	if err != nil {
		return err
	}
	s.State.LastResult = res
	out.text(fmt.Sprintf(msgMatches, len(res)))
	out.menu(exportFrame(promptExport, false), domain.RenderNew)
	return nil
}

func (c *Controller) export(token string) handler {
	format := exportFormat(token)
	return func(s *domain.Session, out *outbox) error {
		if s.State.LastResult.Empty() {
			return query.ErrEmptyDataset
		}
		data, err := c.codec.Encode(string(format), s.State.LastResult)
		if err != nil {
			return &CollaboratorError{Op: "export", Err: err}
		}
		s.State.Stage = domain.StageDocument
		out.file(domain.FileAttachment{
			Name:    format.FileName(),
			Format:  string(format),
			Caption: msgExportCaption,
			Data:    data,
		})
		c.metrics.ObserveExport(string(format))
		return nil
	}
}

// open pushes the frame built for the session and shows it in place.
func open(build func(*domain.Session) navigation.Frame) handler {
	return func(s *domain.Session, out *outbox) error {
		f := build(s)
		s.Navigation.Push(f)
		out.menu(f, domain.RenderEdit)
		return nil
	}
}

func applySort(s *domain.Session, field domain.FieldID, reverse bool, out *outbox) error {
	res, err := query.Sort(s.State.Dataset, field, reverse)
	if err != nil {
		return err
	}
	s.State.LastResult = res
	s.State.LastSortField = field
	return open(func(*domain.Session) navigation.Frame {
		return exportFrame(sortedPrompt(len(res), field, reverse), true)
	})(s, out)
}

func sortBy(field domain.FieldID, reverse bool) handler {
	return func(s *domain.Session, out *outbox) error {
		return applySort(s, field, reverse, out)
	}
}

func sortByChosen(reverse bool) handler {
	return func(s *domain.Session, out *outbox) error {
		if !s.State.LastSortField.IsSet() {
			out.text(msgChooseSortField)
			return nil
		}
		return applySort(s, s.State.LastSortField, reverse, out)
	}
}

func chooseSortField(field domain.FieldID) handler {
	return func(s *domain.Session, out *outbox) error {
		s.State.LastSortField = field
		return open(func(*domain.Session) navigation.Frame { return sortSideFrame(field) })(s, out)
	}
}

func quickFilter(field domain.FieldID) handler {
	return func(s *domain.Session, out *outbox) error {
		s.State.FilterField1 = field
		s.State.FilterField2 = domain.FieldNone
		s.State.Stage = domain.StageFilter
		out.text(filterPrompt(s.State))
		return nil
	}
}

func firstFilterField(field domain.FieldID) handler {
	return func(s *domain.Session, out *outbox) error {
		s.State.FilterField1 = field
		s.State.FilterField2 = ""
		return open(func(*domain.Session) navigation.Frame { return secondFieldFrame(field) })(s, out)
	}
}

// secondFilterField completes a detailed filter selection. An empty field
// repeats the first one, which selects single-field mode.
func secondFilterField(field domain.FieldID) handler {
	return func(s *domain.Session, out *outbox) error {
		first := s.State.FilterField1
		if !first.IsSet() || first.IsSentinel() {
			out.text(msgChooseFirstField)
			return nil
		}
		second := field
		if second == "" {
			second = first
		}
		s.State.FilterField2 = second
		s.State.Stage = domain.StageFilter
		out.text(filterPrompt(s.State))
		return nil
	}
}

// back shows the previous menu. At the root it shows the root again.
func back(s *domain.Session, out *outbox) error {
	s.State.Stage = domain.StageDocument
	f, ok := s.Navigation.Pop()
	if !ok {
		f, ok = s.Navigation.Top()
	}
	if !ok {
		f = rootFrame()
		s.Navigation.Reset(f)
	}
	out.menu(f, domain.RenderEdit)
	return nil
}
