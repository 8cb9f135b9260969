package monitoring

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const defaultInspectPrefix = "active:"

// InspectRow is one badger entry as shown by the inspector.
type InspectRow struct {
	Key       string
	Namespace string
	Entity    string
	Detail    string
}

type inspectPage struct {
	Prefix string
	Items  []InspectRow
}

var inspectTemplate = template.Must(template.New("inspect").Parse(`<!DOCTYPE html>
<html>
<head><title>chat-relay storage</title></head>
<body>
<form method="get"><input name="prefix" value="{{.Prefix}}"><button>inspect</button></form>
<table>
<tr><th>Key</th><th>Namespace</th><th>Entity</th><th>Detail</th></tr>
{{range .Items}}<tr><td>{{.Key}}</td><td>{{.Namespace}}</td><td>{{.Entity}}</td><td><code>{{.Detail}}</code></td></tr>
{{end}}</table>
</body>
</html>
`))

// Inspector renders the server database entries under a key prefix.
// It is only mounted when the server runs with debug logging.
type Inspector struct {
	db *badger.DB
}

func NewInspector(db *badger.DB) *Inspector {
	return &Inspector{db: db}
}

func (i *Inspector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		prefix = defaultInspectPrefix
	}
	page := inspectPage{Prefix: prefix}

	err := i.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = []byte(prefix)
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				page.Items = append(page.Items, MapRow(string(item.Key()), val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = inspectTemplate.Execute(w, page)
}

// MapRow splits key into namespace and entity and renders a Struct record as JSON.
// Values that are not Struct records are shown by size.
func MapRow(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:       key,
		Namespace: "default",
		Entity:    "-",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}
	if namespace, entity, found := strings.Cut(key, ":"); found {
		row.Namespace = namespace
		row.Entity = entity
	}

	var record structpb.Struct
	if err := proto.Unmarshal(val, &record); err == nil {
		if data, err := protojson.Marshal(&record); err == nil {
			row.Detail = string(data)
		}
	}
	return row
}
