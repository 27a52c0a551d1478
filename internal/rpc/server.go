package rpc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/awaken-backend/internal/awaken"
	"github.com/xtding233/awaken-backend/internal/logger"
	"github.com/xtding233/awaken-backend/internal/service"
)

var errBadField = errors.New("bad request field")

const maxExactInt = 1 << 53

// Server adapts service.Service to the Awaken gRPC API.
//
// Request fields: profile, policy (Simulate), a and b (Compare) as strings;
// goal, trials and seed as integral numbers no larger than 2^53.
type Server struct {
	svc *service.Service
}

func NewServer(svc *service.Service) *Server {
	return &Server{svc: svc}
}

// Register attaches the Awaken service backed by svc.
func Register(s grpc.ServiceRegistrar, svc *service.Service) {
	RegisterAwakenServer(s, NewServer(svc))
}

func (s *Server) Simulate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	goal, trials, seed, err := numbers(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	res, err := s.svc.Simulate(ctx, service.SimulateRequest{
		Profile: stringField(in, "profile"),
		Policy:  stringField(in, "policy"),
		Goal:    goal,
		Trials:  trials,
		Seed:    seed,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]any{
		"run_id": res.RunID,
		"policy": res.Policy,
		"goal":   res.Goal,
		"trials": res.Trials,
		"seed":   float64(res.Seed),
		"stats":  statsMap(res.Stats),
	})
}

func (s *Server) Compare(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	goal, trials, seed, err := numbers(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	res, err := s.svc.Compare(ctx, service.CompareRequest{
		Profile: stringField(in, "profile"),
		A:       stringField(in, "a"),
		B:       stringField(in, "b"),
		Goal:    goal,
		Trials:  trials,
		Seed:    seed,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	c := res.Comparison
	return structpb.NewStruct(map[string]any{
		"run_id":   res.RunID,
		"a":        res.A,
		"b":        res.B,
		"policy_a": res.PolicyA.String(),
		"policy_b": res.PolicyB.String(),
		"goal":     res.Goal,
		"trials":   res.Trials,
		"seed":     float64(res.Seed),
		"wins":     c.Wins,
		"losses":   c.Losses,
		"draws":    c.Draws,
		"stats_a":  statsMap(c.StatsA),
		"stats_b":  statsMap(c.StatsB),
	})
}

// LoggingInterceptor logs each unary call with its status code and latency.
func LoggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	logger.Info("grpc", "method", info.FullMethod, "code", status.Code(err).String(), "elapsed", time.Since(start))
	return resp, err
}

func toStatus(err error) error {
	switch {
	case service.IsConfigError(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func stringField(in *structpb.Struct, key string) string {
	return in.GetFields()[key].GetStringValue()
}

// numberField returns nil when key is absent.
func numberField(in *structpb.Struct, key string) (*float64, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return nil, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a number", errBadField, key)
	}
	f := n.NumberValue
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, fmt.Errorf("%w: %s must be an integer", errBadField, key)
	}
	// doubles are exact up to 2^53; anything past that cannot be a sane count or seed
	if math.Abs(f) > maxExactInt {
		return nil, fmt.Errorf("%w: %s out of range", errBadField, key)
	}
	return &f, nil
}

func numbers(in *structpb.Struct) (goal, trials *int, seed *uint64, err error) {
	g, err := numberField(in, "goal")
	if err != nil {
		return nil, nil, nil, err
	}
	tr, err := numberField(in, "trials")
	if err != nil {
		return nil, nil, nil, err
	}
	sd, err := numberField(in, "seed")
	if err != nil {
		return nil, nil, nil, err
	}
	if g != nil {
		if *g > math.MaxInt32 || *g < math.MinInt32 {
			return nil, nil, nil, fmt.Errorf("%w: goal out of range", errBadField)
		}
		v := int(*g)
		goal = &v
	}
	if tr != nil {
		v := int(*tr)
		trials = &v
	}
	if sd != nil {
		if *sd < 0 {
			return nil, nil, nil, fmt.Errorf("%w: seed must be >= 0", errBadField)
		}
		v := uint64(*sd)
		seed = &v
	}
	return goal, trials, seed, nil
}

func statsMap(st awaken.Stats) map[string]any {
	return map[string]any{
		"mean":   st.Mean,
		"var":    st.Var,
		"stddev": st.StdDev,
		"min":    st.Min,
		"max":    st.Max,
		"p50":    st.P50,
		"p90":    st.P90,
		"p99":    st.P99,
	}
}
