package rpc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"

	"github.com/banshee-data/lineprofile/internal/config"
	"github.com/banshee-data/lineprofile/internal/models"
	"github.com/banshee-data/lineprofile/internal/monitoring"
	"github.com/banshee-data/lineprofile/internal/spectral"
	"github.com/banshee-data/lineprofile/internal/store"
	"github.com/banshee-data/lineprofile/internal/units"
	"github.com/banshee-data/lineprofile/internal/version"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

var logf = monitoring.Component("gRPC")

// Ensure Server implements the gRPC interface.
var _ ModelServiceServer = (*Server)(nil)

// Server implements ModelService over a model registry.
type Server struct {
	registry *models.Registry
	runs     *store.SpectrumStore
}

// NewServer creates a server. runs may be nil, in which case evaluations
// are not recorded.
func NewServer(registry *models.Registry, runs *store.SpectrumStore) *Server {
	if registry == nil {
		registry = models.Default()
	}
	return &Server{registry: registry, runs: runs}
}

// Describe returns the descriptor of the requested model.
//
// Request: {model: string}. The model defaults to hill5.
func (s *Server) Describe(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	m, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	logf("Describe model=%s", m.Name())

	resp, err := structpb.NewStruct(describeModel(m.Descriptor()))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode descriptor: %v", err)
	}
	return resp, nil
}

// Evaluate runs a model on the supplied velocity samples.
//
// Request: {model, velocities[], rest_frequency_hz, params[], tbg?, label?}.
// Response: {model, values[], run_id?}.
func (s *Server) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	m, err := s.lookup(req)
	if err != nil {
		return nil, err
	}

	fields := req.GetFields()
	velocities, err := numberList(fields, "velocities")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	params, err := numberList(fields, "params")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := m.Descriptor().CheckFinite(params); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	for i, v := range velocities {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, status.Errorf(codes.InvalidArgument, "\"velocities\"[%d] is not finite", i)
		}
	}

	restHz, err := numberField(fields, "rest_frequency_hz", config.DefaultRestFrequencyHz)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	tbg, err := numberField(fields, "tbg", models.DefaultTBG)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if _, ok := fields["tbg"]; ok {
		bm, ok := m.(models.BackgroundModel)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "model %s has no background temperature", m.Name())
		}
		m = bm.WithBackground(tbg)
	}

	axis, err := spectral.NewAxis(velocities, units.KMS, restHz)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "velocities: %v", err)
	}

	values, err := m.Evaluate(axis, params)
	if err != nil {
		logf("Evaluate model=%s failed: %v", m.Name(), err)
		return nil, toStatus(err)
	}
	logf("Evaluate model=%s samples=%d", m.Name(), len(values))

	out := map[string]interface{}{
		"model":  m.Name(),
		"values": floatList(values),
	}

	if s.runs != nil {
		run := &store.SpectrumRun{
			Model:           m.Name(),
			Label:           fields["label"].GetStringValue(),
			Params:          params,
			TBG:             tbg,
			RestFrequencyHz: restHz,
			Velocities:      velocities,
			Values:          values,
		}
		if err := s.runs.Insert(run); err != nil {
			return nil, status.Errorf(codes.Internal, "record run: %v", err)
		}
		out["run_id"] = run.RunID
	}

	resp, err := structpb.NewStruct(out)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	return resp, nil
}

func (s *Server) lookup(req *structpb.Struct) (models.Model, error) {
	name := req.GetFields()["model"].GetStringValue()
	if name == "" {
		name = models.Hill5Name
	}
	m, err := s.registry.Lookup(name)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	return m, nil
}

// toStatus maps model errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, models.ErrComputation):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, models.ErrParameterCount), errors.Is(err, models.ErrNonFinite),
		errors.Is(err, spectral.ErrUnsupportedUnit):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, models.ErrUnknownModel):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func describeModel(d *models.Descriptor) map[string]interface{} {
	limited := make([]interface{}, 0, d.NumParams())
	for _, l := range d.ParLimited() {
		limited = append(limited, []interface{}{l.Lower, l.Upper})
	}
	limits := make([]interface{}, 0, d.NumParams())
	for _, b := range d.ParLimits() {
		limits = append(limits, []interface{}{b.Lower, b.Upper})
	}
	guesses := make([]interface{}, 0, d.NumParams())
	for _, g := range d.GuessTypes() {
		hint := map[string]interface{}{"kind": g.Kind.String()}
		if g.Kind == models.GuessFixed {
			hint["value"] = g.Value
		}
		guesses = append(guesses, hint)
	}

	return map[string]interface{}{
		"name":            d.Name(),
		"num_params":      float64(d.NumParams()),
		"fit_unit":        d.FitUnit(),
		"par_names":       stringList(d.ParNames()),
		"short_var_names": stringList(d.ShortVarNames()),
		"par_limited":     limited,
		"par_limits":      limits,
		"guess_types":     guesses,
		"version":         version.Version,
	}
}

func numberList(fields map[string]*structpb.Value, key string) ([]float64, error) {
	v, ok := fields[key]
	if !ok {
		return nil, fmt.Errorf("missing %q", key)
	}
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%q must be a list of numbers", key)
	}
	out := make([]float64, len(list.GetValues()))
	for i, item := range list.GetValues() {
		n, ok := item.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("%q[%d] is not a number", key, i)
		}
		out[i] = n.NumberValue
	}
	return out, nil
}

// numberField returns the finite number stored under key, or def when the
// key is absent.
func numberField(fields map[string]*structpb.Value, key string, def float64) (float64, error) {
	v, ok := fields[key]
	if !ok {
		return def, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%q must be a number", key)
	}
	if math.IsNaN(n.NumberValue) || math.IsInf(n.NumberValue, 0) {
		return 0, fmt.Errorf("%q must be finite, got %g", key, n.NumberValue)
	}
	return n.NumberValue, nil
}

func floatList(values []float64) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func stringList(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// Serve registers s on a new gRPC server and serves lis until ctx is
// cancelled, then stops gracefully.
func Serve(ctx context.Context, lis net.Listener, s *Server, opts ...grpc.ServerOption) error {
	grpcServer := grpc.NewServer(opts...)
	RegisterModelServiceServer(grpcServer, s)

	errCh := make(chan error, 1)
	go func() {
		logf("listening on %s", lis.Addr())
		errCh <- grpcServer.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logf("shutting down")
		grpcServer.GracefulStop()
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}
