package swagger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/knadh/koanf/parsers/yaml"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegister(t *testing.T) {
	Convey("Given a router with the document registered", t, func() {
		mux := httprouter.New()
		Register(mux)

		Convey("When the document is fetched", func() {
			req := httptest.NewRequest(http.MethodGet, Path, http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "application/yaml; charset=utf-8")
			So(w.Body.Bytes(), ShouldResemble, OpenAPI)
		})
	})

	Convey("A nil router panics", t, func() {
		So(func() { Register(nil) }, ShouldPanic)
	})
}

func TestOpenAPIDocument(t *testing.T) {
	Convey("Given the embedded document", t, func() {
		doc, err := yaml.Parser().Unmarshal(OpenAPI)
		So(err, ShouldBeNil)

		Convey("Then it describes every store route", func() {
			paths, ok := doc["paths"].(map[string]any)
			So(ok, ShouldBeTrue)
			for _, p := range []string{
				"/healthz",
				"/stats",
				"/v1/collections/{collection}/documents",
				"/v1/collections/{collection}/query",
				"/v1/collections/{collection}/stream",
			} {
				So(paths, ShouldContainKey, p)
			}
		})
	})
}
