package cms

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeExec struct {
	stdout string
	stderr string
	err    error
	block  bool

	dir     string
	name    string
	scripts []string
}

func (f *fakeExec) run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	f.dir = dir
	f.name = name
	f.scripts = append(f.scripts, args[len(args)-1])
	if f.block {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	return []byte(f.stdout), []byte(f.stderr), f.err
}

func newTestClient(f *fakeExec) *PHPClient {
	c := NewPHPClient("/var/www/site", "", nil)
	c.Exec = f.run
	return c
}

func statusLine(body string) string {
	return "some module output\n" + statusMarker + body + "\n"
}

func TestRunUsesDocumentRootAndBinary(t *testing.T) {
	f := &fakeExec{stdout: statusLine(`{"ok":true,"category":"","message":""}`)}
	c := newTestClient(f)

	if err := c.CheckAgents(context.Background()); err != nil {
		t.Fatalf("CheckAgents failed: %v", err)
	}

	if f.dir != "/var/www/site" {
		t.Errorf("dir = %q", f.dir)
	}
	if f.name != DefaultPHPBinary {
		t.Errorf("binary = %q", f.name)
	}
	script := f.scripts[0]
	for _, want := range []string{"prolog_before.php", "NOT_CHECK_PERMISSIONS", "CheckAgents()", "CHK_EVENT"} {
		if !strings.Contains(script, want) {
			t.Errorf("script does not contain %q", want)
		}
	}
}

func TestCheckEventsRunsInCronMode(t *testing.T) {
	f := &fakeExec{stdout: statusLine(`{"ok":true}`)}
	c := newTestClient(f)

	if err := c.CheckEvents(context.Background()); err != nil {
		t.Fatalf("CheckEvents failed: %v", err)
	}

	script := f.scripts[0]
	if !strings.Contains(script, "BX_CRONTAB") || !strings.Contains(script, "CheckEvents()") {
		t.Errorf("unexpected script:\n%s", script)
	}
	if strings.Index(script, "BX_CRONTAB") > strings.Index(script, "CheckEvents()") {
		t.Error("BX_CRONTAB must be defined before CheckEvents")
	}
}

func TestSetOptionQuotesArguments(t *testing.T) {
	f := &fakeExec{stdout: statusLine(`{"ok":true}`)}
	c := newTestClient(f)

	if err := c.SetOption(context.Background(), "main", "it's", "N"); err != nil {
		t.Fatalf("SetOption failed: %v", err)
	}
	if !strings.Contains(f.scripts[0], `Option::set('main', 'it\'s', 'N')`) {
		t.Errorf("unexpected script:\n%s", f.scripts[0])
	}
}

func TestNoDocumentRoot(t *testing.T) {
	c := NewPHPClient("", "", nil)
	if err := c.CheckAgents(context.Background()); !errors.Is(err, ErrNoDocumentRoot) {
		t.Errorf("error = %v, want ErrNoDocumentRoot", err)
	}
}

func TestInstallErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		err    error
		want   Kind
	}{
		{
			name:   "already installed",
			stdout: statusLine(`{"ok":false,"category":"ModuleAlreadyInstalled","message":""}`),
			err:    errors.New("exit status 1"),
			want:   ModuleAlreadyInstalled,
		},
		{
			name:   "dependency",
			stdout: statusLine(`{"ok":false,"category":"DependencyMissing","message":"requires sale"}`),
			err:    errors.New("exit status 1"),
			want:   DependencyMissing,
		},
		{
			name:   "unknown category",
			stdout: statusLine(`{"ok":false,"category":"SomethingElse"}`),
			want:   Unexpected,
		},
		{
			name:   "fatal error without status",
			stdout: "PHP Fatal error: ...",
			err:    errors.New("exit status 255"),
			want:   Unexpected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(&fakeExec{stdout: tt.stdout, err: tt.err})

			err := c.Register(context.Background(), "vendor.module")
			var ie *InstallError
			if !errors.As(err, &ie) {
				t.Fatalf("error = %v, want *InstallError", err)
			}
			if ie.Kind != tt.want {
				t.Errorf("kind = %s, want %s", ie.Kind, tt.want)
			}
			if ie.Code != "vendor.module" {
				t.Errorf("code = %q", ie.Code)
			}
		})
	}
}

func TestInstallRejectsInvalidCode(t *testing.T) {
	f := &fakeExec{}
	c := newTestClient(f)

	err := c.Load(context.Background(), "x'); system('rm")
	var ie *InstallError
	if !errors.As(err, &ie) || ie.Kind != ModuleNotFound {
		t.Errorf("error = %v, want ModuleNotFound", err)
	}
	if len(f.scripts) != 0 {
		t.Error("php must not run for an invalid code")
	}
}

func TestInstallTimeout(t *testing.T) {
	c := newTestClient(&fakeExec{block: true})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := c.Remove(ctx, "vendor.module")
	var ie *InstallError
	if !errors.As(err, &ie) || ie.Kind != Timeout {
		t.Errorf("error = %v, want Timeout", err)
	}
}

func TestInstallCanceled(t *testing.T) {
	c := newTestClient(&fakeExec{block: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Load(ctx, "vendor.module")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	var ie *InstallError
	if errors.As(err, &ie) {
		t.Error("cancellation must not be reported as an install error")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		if got := ParseKind(strings.ToLower(k.Label())); got != k {
			t.Errorf("ParseKind(%q) = %s", k.Label(), got)
		}
	}
	if ParseKind("nope") != Unexpected {
		t.Error("unknown label should be Unexpected")
	}
}

func TestParseStatusUsesLastLine(t *testing.T) {
	out := statusMarker + `{"ok":false,"category":"A"}` + "\n" + statusMarker + `{"ok":true}` + "\n"
	st, err := parseStatus([]byte(out))
	if err != nil {
		t.Fatal(err)
	}
	if !st.OK {
		t.Error("expected the last status line to win")
	}
}
