package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"freyr/api/grpcserver"
	pb "freyr/api/pb"
	"freyr/config"
	"freyr/domain/book"
	"freyr/domain/market"
	"freyr/infra/kafka"
	"freyr/infra/logging"
	"freyr/infra/outbox"
	"freyr/infra/sequence"
	entrywal "freyr/infra/wal/entry"
	"freyr/jobs/broadcaster"
	"freyr/service"
)

func main() {
	cfg := config.Load()
	log := logging.NewLogger(cfg)

	// ---------------- Journal ----------------

	wal, err := entrywal.Open(entrywal.Config{
		Dir:         cfg.Journal.Dir,
		SegmentSize: cfg.Journal.SegmentSize,
		SyncEvery:   cfg.Journal.SyncEvery,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("journal init failed")
	}
	defer wal.Close()

	// ---------------- Outbox ----------------

	box, err := outbox.Open(cfg.Outbox.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("outbox init failed")
	}
	defer box.Close()

	// ---------------- Outbound feeds ----------------

	var trades service.TradeSink
	if cfg.Kafka.Enabled {
		p := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TradeTopic)
		defer p.Close()
		trades = p
	}

	// ---------------- Engine ----------------

	seqGen := sequence.New(0)
	m := market.NewMarket(log, cfg.Market.DepthSize)
	eng := service.NewEngine(log, m, wal, seqGen, box, trades)

	resume, err := eng.Recover(cfg.Snapshot.Dir, cfg.Journal.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("recovery failed")
	}
	for _, sym := range cfg.Market.Symbols {
		if _, ok := m.FindBook(book.Symbol(sym)); ok {
			continue
		}
		if err := eng.AddBook(book.Symbol(sym)); err != nil {
			log.Fatal().Err(err).Uint64("symbol", sym).Msg("book init failed")
		}
	}
	log.Info().Uint64("seq", resume).Msg("engine ready")

	srv := grpcserver.NewServer(log, eng)

	// ---------------- Background jobs ----------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv.StartSnapshotJob(ctx, cfg.Snapshot.Dir,
		time.Duration(cfg.Snapshot.IntervalSeconds)*time.Second)

	if cfg.Kafka.Enabled {
		bc, err := broadcaster.New(box, cfg.Kafka.Brokers, cfg.Kafka.StreamTopic, log)
		if err != nil {
			log.Fatal().Err(err).Msg("broadcaster init failed")
		}
		defer bc.Close()
		bc.Start(ctx)
	}

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Server.GRPCAddr).Msg("listen failed")
	}

	grpcSrv := grpc.NewServer()
	pb.RegisterEngineServer(grpcSrv, srv)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("shutting down")
		grpcSrv.GracefulStop()
	}()

	log.Info().Str("addr", cfg.Server.GRPCAddr).Msg("engine listening")
	if err := grpcSrv.Serve(lis); err != nil {
		log.Fatal().Err(err).Msg("grpc server exited")
	}

	if err := srv.SnapshotNow(context.Background(), cfg.Snapshot.Dir); err != nil {
		log.Error().Err(err).Msg("final snapshot failed")
	}
}
