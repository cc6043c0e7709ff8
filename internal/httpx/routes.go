package httpx

import (
	"net/http"
	"time"

	"github.com/you/go-dish-demand/internal/analysis"
	"github.com/you/go-dish-demand/internal/service"
)

type Options struct {
	StreamEvery    time.Duration
	UploadMaxBytes int64
	Origins        []string
}

// NewMux registers the API routes. Auth, rate limiting and CORS wrap it in main.
func NewMux(svc *service.DemandService, rec analysis.Recognizer, opts Options) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", RootHandler())
	mux.HandleFunc("POST /analizar-plato", AnalyzeHandler(rec, opts.UploadMaxBytes))
	mux.HandleFunc("GET /api/kpi/ventas-historicas", HistoricalSalesHandler(svc))
	mux.HandleFunc("GET /api/prediccion/demanda", PredictDemandHandler(svc))
	mux.HandleFunc("GET /api/prediccion/demanda/todos", PredictAllHandler(svc))
	mux.HandleFunc("GET /sse/{dish}", SubscribeSSEHandler(svc, opts.StreamEvery)) // /sse/Bistec%20Encebollado
	mux.HandleFunc("GET /ws/{dish}", SubscribeWSHandler(svc, opts.StreamEvery, opts.Origins))
	return mux
}
