package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"VidStream.com/pkg/mq"
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// VideoProcessor 视频处理器，封装三类子任务的ffmpeg调用
type VideoProcessor struct {
	// 所有相对路径都挂在这个卷下
	uploadsVolume string
}

func NewVideoProcessor(uploadsVolume string) *VideoProcessor {
	return &VideoProcessor{uploadsVolume: uploadsVolume}
}

// Process 执行一个子任务，产物写到任务指定的输出目录
func (p *VideoProcessor) Process(ctx context.Context, task *mq.VideoTaskMessage) error {
	videoPath := filepath.Join(p.uploadsVolume, task.FilePath)
	outputDir := filepath.Join(p.uploadsVolume, task.OutputPath)

	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return errors.WithMessage(err, "Failed to create output directory")
	}

	switch task.TaskType {
	case mq.TaskTypePoster:
		return p.CreatePoster(videoPath, filepath.Join(outputDir, "poster.jpg"))
	case mq.TaskTypeWebVTT:
		config := defaultWebVTTConfig()
		if task.Config != nil && task.Config.WebVTT != nil {
			config = task.Config.WebVTT
		}
		return p.CreateWebVTT(videoPath, outputDir, config)
	case mq.TaskTypeTrailer:
		config := defaultTrailerConfig()
		if task.Config != nil && task.Config.Trailer != nil {
			config = task.Config.Trailer
		}
		return p.CreateTrailer(videoPath, filepath.Join(outputDir, "trailer.mp4"), config)
	default:
		return errors.Errorf("unknown task type: %s", task.TaskType)
	}
}

func defaultWebVTTConfig() *mq.WebVTTConfig {
	return &mq.WebVTTConfig{Interval: 10, NumColumns: 5, Width: 160, Height: 90}
}

func defaultTrailerConfig() *mq.TrailerConfig {
	return &mq.TrailerConfig{ClipDuration: 2, ClipCount: 5, TargetDuration: 10, Width: 640, Height: 360}
}

// CreatePoster 截取视频第一秒生成封面图
func (p *VideoProcessor) CreatePoster(videoPath, outputPath string) error {
	err := ffmpeg.Input(videoPath).
		Output(outputPath, ffmpeg.KwArgs{
			"ss":      "00:00:01",
			"vframes": "1",
			"vf":      "scale=1280:720",
		}).
		OverWriteOutput().
		Run()
	if err != nil {
		return errors.WithMessage(err, "Failed to generate the poster")
	}
	return p.verifyOutput(outputPath)
}

// CreateWebVTT 生成缩略图雪碧图和对应的WebVTT索引文件
func (p *VideoProcessor) CreateWebVTT(videoPath, outputDir string, config *mq.WebVTTConfig) error {
	duration, err := p.getVideoDuration(videoPath)
	if err != nil {
		return errors.WithMessage(err, "Failed to probe video duration")
	}

	numThumbnails := int(math.Ceil(duration / config.Interval))
	numRows := int(math.Ceil(float64(numThumbnails) / float64(config.NumColumns)))
	if numRows < 1 {
		numRows = 1
	}

	spriteFile := filepath.Join(outputDir, "storyboard.jpg")
	err = ffmpeg.Input(videoPath).
		Output(spriteFile, ffmpeg.KwArgs{
			"vf": fmt.Sprintf("fps=1/%f,scale=%d:%d,tile=%dx%d",
				config.Interval, config.Width, config.Height, config.NumColumns, numRows),
			"frames:v": "1",
		}).
		OverWriteOutput().
		Run()
	if err != nil {
		return errors.WithMessage(err, "Failed to generate the thumbnail sheet")
	}

	vttFile := filepath.Join(outputDir, "thumbnails.vtt")
	if err := p.generateVTTFile(vttFile, duration, config, filepath.Base(outputDir)); err != nil {
		return errors.WithMessage(err, "Failed to generate the VTT file")
	}
	return p.verifyOutput(spriteFile)
}

// CreateTrailer 从视频开头截取片段生成预告片
func (p *VideoProcessor) CreateTrailer(videoPath, outputPath string, config *mq.TrailerConfig) error {
	err := ffmpeg.Input(videoPath).
		Output(outputPath, ffmpeg.KwArgs{
			"ss":     "00:00:00",
			"t":      fmt.Sprintf("%.0f", config.TargetDuration),
			"c:v":    "libx264",
			"c:a":    "aac",
			"vf":     fmt.Sprintf("scale=%d:%d", config.Width, config.Height),
			"strict": "experimental",
		}).
		OverWriteOutput().
		Run()
	if err != nil {
		return errors.WithMessage(err, "Failed to generate the trailer")
	}
	return p.verifyOutput(outputPath)
}

func (p *VideoProcessor) verifyOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.WithMessage(err, "Failed to stat output file")
	}
	if info.Size() == 0 {
		return errors.New("output file is empty")
	}
	return nil
}

// getVideoDuration 用ffprobe读出视频时长（秒）
func (p *VideoProcessor) getVideoDuration(videoPath string) (float64, error) {
	probe, err := ffmpeg.Probe(videoPath)
	if err != nil {
		return 0, err
	}

	var result struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(probe), &result); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(result.Format.Duration), 64)
}

// generateVTTFile 按雪碧图网格写出每个缩略图的时间区间和坐标
func (p *VideoProcessor) generateVTTFile(vttFile string, duration float64, config *mq.WebVTTConfig, baseDir string) error {
	vttContent := []string{"WEBVTT", ""}

	numThumbnails := int(math.Ceil(duration / config.Interval))
	for i := 0; i < numThumbnails; i++ {
		startTime := float64(i) * config.Interval
		endTime := math.Min(float64(i+1)*config.Interval, duration)

		row := i / config.NumColumns
		col := i % config.NumColumns
		x := col * config.Width
		y := row * config.Height

		vttContent = append(vttContent,
			formatTime(startTime)+" --> "+formatTime(endTime),
			fmt.Sprintf("/uploads/%s/storyboard.jpg#xywh=%d,%d,%d,%d", baseDir, x, y, config.Width, config.Height),
			"",
		)
	}

	return os.WriteFile(vttFile, []byte(strings.Join(vttContent, "\n")), 0644)
}

func formatTime(seconds float64) string {
	h := int(seconds / 3600)
	m := int(seconds/60) % 60
	s := seconds - float64(h*3600+m*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, s)
}
