package generatecmder

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ollamachat/cmd/ollamachat/prefsflags"
	"github.com/papercomputeco/ollamachat/pkg/config"
	"github.com/papercomputeco/ollamachat/pkg/llm"
)

var _ = Describe("Generate Command", func() {
	var (
		ctx      context.Context
		upstream *httptest.Server
		mu       sync.Mutex
		sent     map[string]any
		reply    string
		flags    *prefsflags.Flags
		out      *bytes.Buffer
	)

	sentBody := func() map[string]any {
		mu.Lock()
		defer mu.Unlock()
		return sent
	}

	BeforeEach(func() {
		ctx = context.Background()
		reply = `{"response":"<robots> on Mars","done":true,"eval_count":7}`
		upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			var body map[string]any
			_ = json.Unmarshal(raw, &body)
			mu.Lock()
			sent = body
			answer := reply
			mu.Unlock()
			io.WriteString(w, answer)
		}))

		flags = &prefsflags.Flags{
			ConfigPath: filepath.Join(GinkgoT().TempDir(), "config.toml"),
			Server:     upstream.URL,
		}
		out = &bytes.Buffer{}
	})

	AfterEach(func() {
		upstream.Close()
	})

	execute := func(args ...string) error {
		cmd := NewGenerateCmd(flags)
		cmd.SetOut(out)
		cmd.SetErr(io.Discard)
		cmd.SetArgs(args)
		return cmd.ExecuteContext(ctx)
	}

	It("prints the escaped reply", func() {
		Expect(execute("tell", "me")).To(Succeed())
		Expect(out.String()).To(Equal("&lt;robots&gt; on Mars\n"))
		Expect(sentBody()["prompt"]).To(Equal("tell me"))
	})

	It("keeps markup when asked", func() {
		Expect(execute("--keep-html", "hi")).To(Succeed())
		Expect(out.String()).To(Equal("<robots> on Mars\n"))
	})

	It("prints the full response as JSON", func() {
		Expect(execute("--full", "hi")).To(Succeed())

		var decoded map[string]any
		Expect(json.Unmarshal(out.Bytes(), &decoded)).To(Succeed())
		Expect(decoded["eval_count"]).To(Equal(float64(7)))
		Expect(decoded["response"]).To(Equal("<robots> on Mars"))
	})

	It("sends the system prompt, model and options", func() {
		Expect(execute("--system", "be brief", "--model", "phi3", "-o", "temperature=0.2", "-o", "stop=[\"x\"]", "hi")).To(Succeed())

		body := sentBody()
		Expect(body["prompt"]).To(Equal("be brief\n\nhi"))
		Expect(body["model"]).To(Equal("phi3"))
		Expect(body["options"]).To(Equal(map[string]any{"temperature": 0.2, "stop": []any{"x"}}))
	})

	It("uses the preferred model from the preferences file", func() {
		prefs := config.Defaults()
		prefs.Model = "mistral:latest"
		Expect(config.Save(flags.ConfigPath, prefs)).To(Succeed())

		Expect(execute("hi")).To(Succeed())
		Expect(sentBody()["model"]).To(Equal("mistral:latest"))
	})

	It("fails when the server reports an error", func() {
		mu.Lock()
		reply = `{"error":"model not found"}`
		mu.Unlock()
		err := execute("hi")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("model not found"))
		Expect(out.String()).To(BeEmpty())
	})

	It("requires a prompt", func() {
		Expect(execute()).To(HaveOccurred())
	})

	Describe("ParseOptions", func() {
		It("decodes JSON values and keeps other values as strings", func() {
			opts, err := ParseOptions([]string{"temperature=0.5", "mirostat=true", "stop=[\"a\",\"b\"]", "note=hello world"})
			Expect(err).NotTo(HaveOccurred())
			Expect(opts).To(Equal(llm.Options{
				"temperature": 0.5,
				"mirostat":    true,
				"stop":        []any{"a", "b"},
				"note":        "hello world",
			}))
		})

		It("rejects pairs without a key", func() {
			_, err := ParseOptions([]string{"=1"})
			Expect(err).To(HaveOccurred())
			_, err = ParseOptions([]string{"temperature"})
			Expect(err).To(HaveOccurred())
		})

		It("returns nil without pairs", func() {
			Expect(ParseOptions(nil)).To(BeNil())
		})
	})
})
