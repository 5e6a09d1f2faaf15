package google

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"form-applier/internal/application/port/output"
	"form-applier/internal/domain/applicant"
	"form-applier/internal/domain/entity"
	"form-applier/internal/infrastructure/browser/rod"
	"form-applier/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jobFormHTML mimics the structure of a published Google Form.
const jobFormHTML = `<!DOCTYPE html>
<html>
<body>
<form>
	<div role="list">
		<div role="listitem">
			<div role="heading">Full Name</div><span aria-label="Required question">*</span>
			<input type="text" id="q-name">
		</div>
		<div role="listitem">
			<div role="heading">Email</div><span aria-label="Required question">*</span>
			<input type="email" id="q-email">
		</div>
		<div role="listitem">
			<div role="heading">Years of experience</div>
			<div role="radiogroup">
				<div role="radio" aria-checked="false">0-1</div>
				<div role="radio" aria-checked="false">2-4</div>
				<div role="radio" aria-checked="false">5+</div>
			</div>
		</div>
		<div role="listitem">
			<div role="heading">Comments</div>
			<textarea id="q-comments"></textarea>
		</div>
	</div>
	<div role="button" id="clear">Clear form</div>
	<div role="button" id="submit">Submit</div>
</form>
<script>
	document.querySelectorAll("[role='radio']").forEach(function (r) {
		r.addEventListener("click", function () {
			document.querySelectorAll("[role='radio']").forEach(function (o) { o.setAttribute("aria-checked", "false"); });
			r.setAttribute("aria-checked", "true");
		});
	});
	document.getElementById("submit").addEventListener("click", function () {
		var checked = document.querySelector("[role='radio'][aria-checked='true']");
		var summary = [
			document.getElementById("q-name").value,
			document.getElementById("q-email").value,
			checked ? checked.textContent : "",
			document.getElementById("q-comments").value
		].join("|");
		document.body.innerHTML = "<div>Your response has been recorded.</div><p id='summary'>" + summary + "</p>";
	});
</script>
</body>
</html>`

func startPage(t *testing.T) output.PagePort {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	cfg := rod.DefaultConfig()
	cfg.Timeout = 15 * time.Second
	cfg.IdleWait = 500 * time.Millisecond
	l, err := rod.NewLauncher(cfg, logger.NewNop())
	require.NoError(t, err)

	b, err := l.Launch(context.Background())
	if err != nil {
		t.Skipf("browser not available: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, jobFormHTML)
	}))
	t.Cleanup(srv.Close)

	page, err := b.NewPage(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = page.Close() })

	res, err := page.Navigate(context.Background(), srv.URL)
	require.NoError(t, err)
	require.NotNil(t, res)
	return page
}

func TestJobFormAgent_Browser(t *testing.T) {
	page := startPage(t)
	ctx := context.Background()

	profile, err := applicant.NewProfile(map[string]any{
		"name":       "Ada Lovelace",
		"email":      "ada@example.com",
		"country":    "gb",
		"experience": "2-4",
	})
	require.NoError(t, err)

	agent := NewJobFormAgent(FallbackFirstOption, logger.NewNop())

	form, err := agent.LocateForm(ctx, page)
	require.NoError(t, err)

	questions, err := agent.questions(ctx, form)
	require.NoError(t, err)
	require.Len(t, questions, 4)

	schema, err := ReadSchema(ctx, questions[2])
	require.NoError(t, err)
	assert.Equal(t, "Years of experience", schema.LabelText())
	assert.Equal(t, entity.QuestionRadio, schema.Type)
	assert.False(t, schema.Required)
	require.Len(t, schema.Options, 3)
	assert.Equal(t, "2-4", schema.Options[1].Label)

	require.NoError(t, agent.FillForm(ctx, form, profile.FormData()))
	require.NoError(t, agent.SubmitForm(ctx, form))

	confirmed, err := agent.ConfirmSubmission(ctx, page)
	require.NoError(t, err)
	assert.True(t, confirmed)

	html, err := page.HTML(ctx)
	require.NoError(t, err)
	assert.Contains(t, html, "Ada Lovelace|ada@example.com|2-4|")

	path := filepath.Join(t.TempDir(), "evidence.png")
	require.NoError(t, agent.CaptureEvidence(ctx, page, path, entity.EvidenceSettings{Format: entity.ImagePNG}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
