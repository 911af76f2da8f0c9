package simulator

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/thomaswlyons-a11y/Chestpain28012026/internal/cloudwriter"
	"github.com/thomaswlyons-a11y/Chestpain28012026/internal/models"
	"github.com/thomaswlyons-a11y/Chestpain28012026/internal/simulator/producers"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/schema"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

const (
	TopicPatientEvents = "patient_events"
	TopicShiftSummary  = "shift_summary_events"
)

// PatientEvent is the flat wire form of one evaluated patient.
type PatientEvent struct {
	Timestamp   int64  `json:"timestamp" parquet:"name=timestamp,type=INT64"`
	RunID       string `json:"runId" parquet:"name=runId,type=BYTE_ARRAY,convertedtype=UTF8"`
	PatientID   int32  `json:"patientId" parquet:"name=patientId,type=INT32"`
	Name        string `json:"name" parquet:"name=name,type=BYTE_ARRAY,convertedtype=UTF8"`
	Age         int32  `json:"age" parquet:"name=age,type=INT32"`
	Condition   string `json:"condition" parquet:"name=condition,type=BYTE_ARRAY,convertedtype=UTF8"`
	HeartScore  int32  `json:"heartScore" parquet:"name=heartScore,type=INT32"`
	T0          int32  `json:"t0" parquet:"name=t0,type=INT32"`
	T1          int32  `json:"t1" parquet:"name=t1,type=INT32"`
	Outcome     string `json:"outcome" parquet:"name=outcome,type=BYTE_ARRAY,convertedtype=UTF8"`
	Action      string `json:"action" parquet:"name=action,type=BYTE_ARRAY,convertedtype=UTF8"`
	WaitMinutes int32  `json:"waitMinutes" parquet:"name=waitMinutes,type=INT32"`
	BedsBlocked int32  `json:"bedsBlocked" parquet:"name=bedsBlocked,type=INT32"`
}

// ShiftSummaryEvent is the wire form of the finalized shift aggregate.
type ShiftSummaryEvent struct {
	Timestamp         int64   `json:"timestamp" parquet:"name=timestamp,type=INT64"`
	RunID             string  `json:"runId" parquet:"name=runId,type=BYTE_ARRAY,convertedtype=UTF8"`
	ConfigFingerprint string  `json:"configFingerprint" parquet:"name=configFingerprint,type=BYTE_ARRAY,convertedtype=UTF8"`
	PatientCount      int32   `json:"patientCount" parquet:"name=patientCount,type=INT32"`
	TotalWaitMinutes  int32   `json:"totalWaitMinutes" parquet:"name=totalWaitMinutes,type=INT32"`
	BedsBlocked       int32   `json:"bedsBlocked" parquet:"name=bedsBlocked,type=INT32"`
	TrueNSTEMI        int32   `json:"trueNstemi" parquet:"name=trueNstemi,type=INT32"`
	MissedUA          int32   `json:"missedUa" parquet:"name=missedUa,type=INT32"`
	ClinicalRescues   int32   `json:"clinicalRescues" parquet:"name=clinicalRescues,type=INT32"`
	WaitingCost       float64 `json:"waitingCost" parquet:"name=waitingCost,type=DOUBLE"`
	TestingCost       float64 `json:"testingCost" parquet:"name=testingCost,type=DOUBLE"`
	TotalCost         float64 `json:"totalCost" parquet:"name=totalCost,type=DOUBLE"`
	AnnualCost        float64 `json:"annualCost" parquet:"name=annualCost,type=DOUBLE"`
}

func NewPatientEvent(result models.RunResult, p models.PatientRecord) PatientEvent {
	return PatientEvent{
		Timestamp:   result.GeneratedAt.Unix(),
		RunID:       result.RunID,
		PatientID:   int32(p.ID),
		Name:        p.Name,
		Age:         int32(p.Age),
		Condition:   p.Condition,
		HeartScore:  int32(p.HeartScore),
		T0:          int32(p.T0),
		T1:          int32(p.T1),
		Outcome:     p.Outcome,
		Action:      p.Action,
		WaitMinutes: int32(p.WaitMinutes),
		BedsBlocked: int32(p.BedsBlocked),
	}
}

func NewShiftSummaryEvent(result models.RunResult) ShiftSummaryEvent {
	return ShiftSummaryEvent{
		Timestamp:         result.GeneratedAt.Unix(),
		RunID:             result.RunID,
		ConfigFingerprint: result.ConfigFingerprint,
		PatientCount:      int32(result.Aggregate.PatientCount),
		TotalWaitMinutes:  int32(result.Aggregate.TotalWaitMinutes),
		BedsBlocked:       int32(result.Aggregate.BedsBlocked),
		TrueNSTEMI:        int32(result.Aggregate.TrueNSTEMI),
		MissedUA:          int32(result.Aggregate.MissedUA),
		ClinicalRescues:   int32(result.Aggregate.ClinicalRescues),
		WaitingCost:       result.Financials.WaitingCost,
		TestingCost:       result.Financials.TestingCost,
		TotalCost:         result.Financials.TotalCost,
		AnnualCost:        result.Financials.Annualized(),
	}
}

func GetSchema(topic string) (*schema.SchemaHandler, error) {
	var sh *schema.SchemaHandler
	var err error

	switch topic {
	case TopicPatientEvents:
		sh, err = schema.NewSchemaHandlerFromStruct(new(PatientEvent))
	case TopicShiftSummary:
		sh, err = schema.NewSchemaHandlerFromStruct(new(ShiftSummaryEvent))
	default:
		return nil, fmt.Errorf("unknown topic: %s", topic)
	}
	if err != nil {
		return nil, fmt.Errorf("error creating schema for %s: %w", topic, err)
	}
	return sh, nil
}

type OutputDestination interface {
	WriteMessage(topic string, msg []byte) error
}

type ConsoleOutput struct{}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	output := fmt.Sprintf("[%s] %s\n", topic, string(msg))
	if _, err := os.Stdout.Write([]byte(output)); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	_ = os.Stdout.Sync()
	return nil
}

type CSVOutput struct {
	basePath string
	folder   string
	files    map[string]*csv.Writer
	headers  map[string][]string
}

func NewCSVOutput(basePath, folder string) *CSVOutput {
	return &CSVOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*csv.Writer),
		headers:  make(map[string][]string),
	}
}

func (c *CSVOutput) WriteMessage(topic string, msg []byte) error {
	var event map[string]interface{}
	if err := json.Unmarshal(msg, &event); err != nil {
		return err
	}

	fullPath, err := partitionPath(c.basePath, c.folder, topic, event)
	if err != nil {
		return err
	}

	csvWriter, ok := c.files[fullPath]
	if !ok {
		file, err := os.Create(filepath.Join(fullPath, "data.csv"))
		if err != nil {
			return err
		}
		csvWriter = csv.NewWriter(file)
		c.files[fullPath] = csvWriter

		headers := sortedKeys(event)
		if err := csvWriter.Write(headers); err != nil {
			return err
		}
		c.headers[fullPath] = headers
	}

	row := make([]string, len(c.headers[fullPath]))
	for i, header := range c.headers[fullPath] {
		if value, ok := event[header]; ok {
			row[i] = fmt.Sprintf("%v", value)
		}
	}
	if err := csvWriter.Write(row); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func (c *CSVOutput) Close() error {
	for _, csvWriter := range c.files {
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			return err
		}
	}
	return nil
}

type JSONOutput struct {
	basePath string
	folder   string
	files    map[string]*os.File
}

func NewJSONOutput(basePath, folder string) *JSONOutput {
	return &JSONOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*os.File),
	}
}

func (j *JSONOutput) WriteMessage(topic string, msg []byte) error {
	var event map[string]interface{}
	if err := json.Unmarshal(msg, &event); err != nil {
		return err
	}

	fullPath, err := partitionPath(j.basePath, j.folder, topic, event)
	if err != nil {
		return err
	}

	file, ok := j.files[fullPath]
	if !ok {
		var err error
		file, err = os.Create(filepath.Join(fullPath, "data.json"))
		if err != nil {
			return err
		}
		j.files[fullPath] = file
	}

	if _, err := file.Write(msg); err != nil {
		return err
	}
	_, err = file.WriteString("\n")
	return err
}

func (j *JSONOutput) Close() error {
	for _, file := range j.files {
		if err := file.Close(); err != nil {
			return err
		}
	}
	return nil
}

type ParquetOutput struct {
	basePath           string
	folder             string
	writers            map[string]*writer.ParquetWriter
	files              map[string]source.ParquetFile
	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string
}

func NewParquetOutput(config *models.Config) (*ParquetOutput, error) {
	p := &ParquetOutput{
		basePath: config.OutputPath,
		folder:   config.OutputFolder,
		writers:  make(map[string]*writer.ParquetWriter),
		files:    make(map[string]source.ParquetFile),
	}

	if config.OutputDestination == "s3" {
		factory, err := cloudwriter.NewS3WriterFactory(config.CloudStorage.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
		}
		p.cloudWriterFactory = factory
		p.cloudBucketName = config.CloudStorage.BucketName
	}

	return p, nil
}

func (p *ParquetOutput) WriteMessage(topic string, msg []byte) error {
	var event map[string]interface{}
	if err := json.Unmarshal(msg, &event); err != nil {
		return err
	}

	fullPath, err := partitionPath(p.basePath, p.folder, topic, event)
	if err != nil {
		return err
	}

	pw, ok := p.writers[fullPath]
	if !ok {
		pw, err = p.createNewWriter(fullPath, topic)
		if err != nil {
			return fmt.Errorf("failed to create new writer: %w", err)
		}
	}

	if err := pw.Write(event); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

func (p *ParquetOutput) createNewWriter(fullPath, topic string) (*writer.ParquetWriter, error) {
	var fw source.ParquetFile
	var err error
	if p.cloudWriterFactory != nil {
		objectPath := filepath.Join(fullPath, "data.parquet")
		cw, err := p.cloudWriterFactory.NewWriter(p.cloudBucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		fw = cloudwriter.NewCloudParquetFile(cw)
	} else {
		fw, err = local.NewLocalFileWriter(filepath.Join(fullPath, "data.parquet"))
		if err != nil {
			return nil, fmt.Errorf("failed to create local file writer: %w", err)
		}
	}

	sc, err := GetSchema(topic)
	if err != nil {
		return nil, err
	}

	pw, err := writer.NewParquetWriter(fw, nil, 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	pw.SchemaHandler = sc

	p.writers[fullPath] = pw
	p.files[fullPath] = fw
	return pw, nil
}

func (p *ParquetOutput) Close() error {
	var lastErr error
	for key, pw := range p.writers {
		if err := pw.WriteStop(); err != nil {
			lastErr = err
			log.Printf("Error closing writer for %s: %v", key, err)
		}
		if f, ok := p.files[key]; ok {
			if err := f.Close(); err != nil {
				lastErr = err
				log.Printf("Error closing file for %s: %v", key, err)
			}
		}
	}
	return lastErr
}

// partitionPath lays files out under topic/run=<id>/ so successive runs
// never clobber each other.
func partitionPath(basePath, folder, topic string, event map[string]interface{}) (string, error) {
	runID, ok := event["runId"].(string)
	if !ok {
		// events without a run tag partition by date instead
		runID = time.Now().UTC().Format("2006-01-02")
	}
	fullPath := filepath.Join(basePath, folder, topic, fmt.Sprintf("run=%s", runID))
	if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
		return "", err
	}
	return fullPath, nil
}

func sortedKeys(event map[string]interface{}) []string {
	keys := make([]string, 0, len(event))
	for key := range event {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s *Simulator) determineOutputDestination() OutputDestination {
	if s.Config.KafkaEnabled {
		producer, err := producers.NewSaramaProducer(s.Config)
		if err != nil {
			log.Fatalf("Failed to create Kafka producer: %s", err)
		}
		return producer
	}
	if s.Config.OutputPath != "" {
		switch s.Config.OutputFormat {
		case "parquet":
			output, err := NewParquetOutput(s.Config)
			if err != nil {
				log.Fatalf("Failed to create Parquet output: %s", err)
			}
			return output
		case "json":
			return NewJSONOutput(s.Config.OutputPath, s.Config.OutputFolder)
		case "csv":
			return NewCSVOutput(s.Config.OutputPath, s.Config.OutputFolder)
		default:
			log.Fatalf("Unsupported output format: %s", s.Config.OutputFormat)
		}
	}
	return &ConsoleOutput{}
}
