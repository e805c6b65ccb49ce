package webservice

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/womat/debug"

	"meterbilling/global"
	"meterbilling/pkg/billing"
)

type webservice struct {
	site *billing.Site
}

// Handler returns a mux with all webservices enabled in conf.
// Known webservices are version, currentdata and meter.
func Handler(site *billing.Site, conf global.WebserverConf) http.Handler {
	ws := webservice{site: site}
	mux := http.NewServeMux()

	for pattern, f := range map[string]func(http.ResponseWriter, *http.Request){
		"version":     httpGetVersion,
		"currentdata": ws.httpReadCurrentData,
		"meter":       ws.httpReadMeterData,
	} {
		if set, ok := conf.Webservices[pattern]; ok && set {
			mux.HandleFunc("/"+pattern, f)
			if pattern == "meter" {
				mux.HandleFunc("/meter/", f)
			}
		}
	}

	return mux
}

// Start serves the webservices in the background.
func Start(site *billing.Site, conf global.WebserverConf) {
	port := ":" + strconv.Itoa(conf.Port)
	go func() {
		if err := http.ListenAndServe(port, Handler(site, conf)); err != nil {
			debug.ErrorLog.Printf("webserver %v: %v\n", port, err)
		}
	}()
}

// httpGetVersion prints the SW Version
func httpGetVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(strconv.Quote(global.VERSION))); err != nil {
		debug.ErrorLog.Println(err)
		return
	}
}

// httpReadMeterData supplies the data of one meter, eg /meter/101
func (ws webservice) httpReadMeterData(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/meter/"))
	if err != nil {
		debug.ErrorLog.Printf("invalid meter: %q\n", r.URL.Path)
		http.Error(w, "invalid meter", http.StatusBadRequest)
		return
	}

	row, ok := ws.site.Row(id)
	if !ok {
		debug.ErrorLog.Printf("invalid meter: %v\n", id)
		http.NotFound(w, r)
		return
	}

	writeJSON(w, row)
}

// httpReadCurrentData supplies the data of all meters
func (ws webservice) httpReadCurrentData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, ws.site.Rows())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	j, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		debug.ErrorLog.Println(err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(j); err != nil {
		debug.ErrorLog.Println(err)
		return
	}
}
