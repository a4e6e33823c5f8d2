package main

import (
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/sirupsen/logrus"

	backend "github.com/floorguard/claims-backend"
	"github.com/floorguard/claims-backend/pkg/caroundtripper"
	"github.com/floorguard/claims-backend/pkg/claims"
	"github.com/floorguard/claims-backend/pkg/cli"
	"github.com/floorguard/claims-backend/pkg/detection"
	"github.com/floorguard/claims-backend/pkg/extraction"
	"github.com/floorguard/claims-backend/pkg/logutils"
	"github.com/floorguard/claims-backend/pkg/storage"
	"github.com/floorguard/claims-backend/pkg/storage/b2"
	"github.com/floorguard/claims-backend/pkg/storage/model"
)

var args struct {
	B2AccountId    string `arg:"--b2-account-id,env:B2_ACCOUNT" help:"Account for B2 storage - when using the b2 storage"`
	B2AccountKey   string `arg:"--b2-account-key,env:B2_KEY" help:"Key for B2 storage - when using the b2 storage"`
	B2BucketName   string `arg:"--b2-bucket-name,env:B2_BUCKET_NAME" help:"Bucket Name for B2 storage - when using the b2 storage"`
	B2Passphrase   string `arg:"env:B2_PASSPHRASE" help:"Passphrase for B2 storage (optional) - when using the b2 storage"`
	CollaboratorCa string `arg:"--collaborator-ca,env:COLLABORATOR_CA" help:"Path to a CA certificate to pin for the collaborator services (optional)"`
	DetectApiAddr  string `arg:"--detect-api-addr,required,env:DETECT_API_ADDR" help:"Address of the issue detection service"`
	ExtractApiAddr string `arg:"--extract-api-addr,required,env:EXTRACT_API_ADDR" help:"Address of the invoice extraction service"`
	FsPath         string `arg:"--fs-path,env:FS_PATH" help:"Path to the directory where to store the photos - when using the fs storage"`
	ListenAddr     string `arg:"-L,--listen-addr" default:"127.0.0.1:8085"`
	LogLevel       string `arg:"--log-level,env:LOG_LEVEL" default:"info"`
	StorageType    string `arg:"--storage-type,env:STORAGE_TYPE,required" help:"Type of storage to use"`
}

var log = logrus.StandardLogger()

func main() {
	arg.MustParse(&args)
	if err := cli.FillKeychainValues(&args); err != nil {
		log.Fatalf("fill keychain values: %v", err)
	}
	logutils.Setup(args.LogLevel)

	extractor, err := extraction.New(args.ExtractApiAddr)
	if err != nil {
		log.Fatalf("create extraction client: %v", err)
	}
	detector, err := detection.New(args.DetectApiAddr)
	if err != nil {
		log.Fatalf("create detection client: %v", err)
	}
	if args.CollaboratorCa != "" {
		rt, err := caroundtripper.New(args.CollaboratorCa)
		if err != nil {
			log.Fatalf("load collaborator CA: %v", err)
		}
		extractor.SetHttpTransport(rt)
		detector.SetHttpTransport(rt)
	}

	store := claims.New(claims.SeedClaims())
	s := backend.New(store, getStorage(), extractor, detector)
	if err := s.Ping(); err != nil {
		log.Warnf("collaborator services unreachable: %v", err)
	}

	if err := s.Run(args.ListenAddr); err != nil {
		log.Fatalf("listen: %v", err)
	}
}

func getStorage() model.RWStorage {
	switch strings.ToLower(args.StorageType) {
	case "b2":
		return storage.SetupB2Storage(b2.Config{
			Account:    args.B2AccountId,
			BucketName: args.B2BucketName,
			Key:        args.B2AccountKey,
			Passphrase: args.B2Passphrase,
		})
	case "fs":
		return storage.SetupFsStorage(args.FsPath)
	}

	log.Fatalf("unknown storage type: %s", args.StorageType)
	return nil
}
