package decode

import (
	"errors"
	"net/http"
	"testing"

	"github.com/samvad-hq/dblclient/pkg/httpclient"
)

type stubResponse struct {
	body []byte
}

func (s stubResponse) Body() []byte        { return s.body }
func (s stubResponse) StatusCode() int     { return http.StatusOK }
func (s stubResponse) Header() http.Header { return http.Header{} }

type sample struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

func TestJSONDecodesTypedValue(t *testing.T) {
	got, err := JSON[sample]().Decode(stubResponse{body: []byte(`{"id":"1","count":3}`)})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != (sample{ID: "1", Count: 3}) {
		t.Fatalf("got %+v", got)
	}
}

func TestJSONDecodesSlices(t *testing.T) {
	got, err := JSON[[]sample]().Decode(stubResponse{body: []byte(`[{"id":"a"},{"id":"b"}]`)})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 2 || got[1].ID != "b" {
		t.Fatalf("got %+v", got)
	}
}

func TestJSONNoContentIgnoresBody(t *testing.T) {
	for _, body := range []string{"", "not json", `{"ok":true}`} {
		if _, err := JSON[NoContent]().Decode(stubResponse{body: []byte(body)}); err != nil {
			t.Fatalf("NoContent decode of %q failed: %v", body, err)
		}
	}
}

func TestJSONFailuresAreDecodeErrors(t *testing.T) {
	cases := map[string]struct {
		dec  Decoder[sample]
		body string
	}{
		"empty":           {dec: JSON[sample](), body: "  "},
		"malformed":       {dec: JSON[sample](), body: `{"id":`},
		"wrong shape":     {dec: JSON[sample](), body: `[1,2]`},
		"missing field":   {dec: JSON[sample](Require("id")), body: `{"count":1}`},
		"null field":      {dec: JSON[sample](Require("id")), body: `{"id":null}`},
		"required on arr": {dec: JSON[sample](Require("id")), body: `[]`},
		"null body":       {dec: JSON[sample](), body: `null`},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tc.dec.Decode(stubResponse{body: []byte(tc.body)})
			var de *Error
			if !errors.As(err, &de) {
				t.Fatalf("expected *Error, got %T %v", err, err)
			}
			if de.Target != "decode.sample" {
				t.Fatalf("target = %s", de.Target)
			}
		})
	}
}

func TestJSONMissingFieldIsIdentifiable(t *testing.T) {
	_, err := JSON[sample](Require("id", "count")).Decode(stubResponse{body: []byte(`{"id":"x"}`)})
	var mf *MissingFieldError
	if !errors.As(err, &mf) || mf.Field != "count" {
		t.Fatalf("expected missing count, got %v", err)
	}
}

func TestJSONRequireEachChecksElements(t *testing.T) {
	dec := JSON[[]sample](RequireEach("id"))

	got, err := dec.Decode(stubResponse{body: []byte(`[{"id":"a"},{"id":"b","count":2}]`)})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 2 || got[1].Count != 2 {
		t.Fatalf("got %+v", got)
	}

	if _, err := dec.Decode(stubResponse{body: []byte(`[]`)}); err != nil {
		t.Fatalf("empty array should decode: %v", err)
	}

	cases := map[string]struct {
		body    string
		missing bool
		index   int
	}{
		"absent":     {body: `[{"id":"a"},{"count":1}]`, missing: true, index: 1},
		"null":       {body: `[{"id":null}]`, missing: true, index: 0},
		"not array":  {body: `{"id":"a"}`},
		"not object": {body: `["a"]`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := dec.Decode(stubResponse{body: []byte(tc.body)})
			var de *Error
			if !errors.As(err, &de) {
				t.Fatalf("expected *Error, got %T %v", err, err)
			}
			if !tc.missing {
				return
			}
			var mf *MissingFieldError
			if !errors.As(err, &mf) || mf.Field != "id" || mf.Index != tc.index {
				t.Fatalf("expected id missing at %d, got %v", tc.index, err)
			}
		})
	}
}

func TestFuncWrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	dec := Func[int](func(httpclient.Response) (int, error) { return 0, boom })

	_, err := dec.Decode(stubResponse{})
	var de *Error
	if !errors.As(err, &de) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}

	already := &Error{Target: "custom", Err: boom}
	dec = Func[int](func(httpclient.Response) (int, error) { return 0, already })
	if _, err := dec.Decode(stubResponse{}); err != already {
		t.Fatalf("expected existing *Error to pass through, got %v", err)
	}
}

func TestBoolDecoder(t *testing.T) {
	cases := []struct {
		body    string
		want    bool
		wantErr bool
	}{
		{body: `{"voted":1}`, want: true},
		{body: `{"voted":0}`, want: false},
		{body: `{"voted":true}`, want: true},
		{body: `{"voted":2}`, want: false},
		{body: `{}`, wantErr: true},
		{body: `{"voted":"yes"}`, wantErr: true},
		{body: `nope`, wantErr: true},
	}
	for _, tc := range cases {
		got, err := Bool("voted").Decode(stubResponse{body: []byte(tc.body)})
		if tc.wantErr {
			var de *Error
			if !errors.As(err, &de) {
				t.Fatalf("%s: expected *Error, got %v", tc.body, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.body, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.body, got, tc.want)
		}
	}
}
