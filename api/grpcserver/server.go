// Package grpcserver adapts the engine to the gRPC surface.
package grpcserver

import (
	"context"

	"github.com/rs/zerolog"

	"freyr/api/pb"
	"freyr/domain/book"
	"freyr/service"
)

// Server answers the Engine service. The engine is single writer, so
// the server funnels every command through one mutex rather than
// letting grpc's per-stream goroutines race into the book.
type Server struct {
	log zerolog.Logger
	svc *service.Engine
	mu  chan struct{} // 1-slot semaphore, context aware
}

func NewServer(log zerolog.Logger, svc *service.Engine) *Server {
	s := &Server{log: log, svc: svc, mu: make(chan struct{}, 1)}
	s.mu <- struct{}{}
	return s
}

func (s *Server) acquire(ctx context.Context) error {
	select {
	case <-s.mu:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) release() { s.mu <- struct{}{} }

// -------------------- Commands --------------------

func (s *Server) SubmitOrder(ctx context.Context, req *pb.SubmitOrderRequest) (*pb.SubmitOrderResponse, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	var err error
	if req.Limit {
		err = s.svc.SubmitLimit(book.OrderID(req.OrderId), isBuy(req.Side),
			book.Symbol(req.Symbol), book.Quantity(req.Quantity), book.Price(req.Price))
	} else {
		err = s.svc.SubmitMarket(book.OrderID(req.OrderId), isBuy(req.Side),
			book.Symbol(req.Symbol), book.Quantity(req.Quantity))
	}
	if err != nil {
		s.log.Warn().Err(err).Uint64("order_id", req.OrderId).Msg("submit refused")
		return &pb.SubmitOrderResponse{Status: "rejected"}, nil
	}

	s.log.Debug().
		Uint64("order_id", req.OrderId).
		Str("side", req.Side.String()).
		Int64("qty", req.Quantity).
		Int64("price", req.Price).
		Msg("order submitted")
	return &pb.SubmitOrderResponse{Status: "ok", SeqNo: s.svc.Sequence()}, nil
}

func (s *Server) CancelOrder(ctx context.Context, req *pb.CancelOrderRequest) (*pb.CancelOrderResponse, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	found, err := s.svc.Cancel(book.OrderID(req.OrderId))
	if err != nil {
		return &pb.CancelOrderResponse{Status: "rejected"}, nil
	}
	return &pb.CancelOrderResponse{Status: "ok", Found: found}, nil
}

func (s *Server) CreateBook(ctx context.Context, req *pb.CreateBookRequest) (*pb.CreateBookResponse, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	if _, existed := s.svc.Market().FindBook(book.Symbol(req.Symbol)); existed {
		return &pb.CreateBookResponse{Status: "ok", Created: false}, nil
	}
	if err := s.svc.AddBook(book.Symbol(req.Symbol)); err != nil {
		return &pb.CreateBookResponse{Status: "rejected"}, nil
	}
	return &pb.CreateBookResponse{Status: "ok", Created: true}, nil
}

// -------------------- Queries --------------------

func (s *Server) GetBook(ctx context.Context, req *pb.BookRequest) (*pb.BookResponse, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	bd, err := s.svc.Snapshot(book.Symbol(req.Symbol))
	if err != nil {
		return &pb.BookResponse{Symbol: req.Symbol}, nil
	}

	resp := &pb.BookResponse{Symbol: req.Symbol}
	for _, l := range bd.Bids {
		resp.Bids = append(resp.Bids, &pb.PriceLevel{Price: int64(l.Price), Quantity: int64(l.Quantity)})
	}
	for _, l := range bd.Asks {
		resp.Asks = append(resp.Asks, &pb.PriceLevel{Price: int64(l.Price), Quantity: int64(l.Quantity)})
	}
	return resp, nil
}

// -------------------- Converters --------------------

func isBuy(s pb.Side) bool { return s == pb.Side_BUY }
