package publish

import (
	"context"
	"fmt"
	"log"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"videodub/translation"
)

// Uploader publishes dubbed videos to YouTube with a service account.
type Uploader struct {
	service *youtube.Service
}

func NewUploader(ctx context.Context, serviceAccountFile string) (*Uploader, error) {
	data, err := os.ReadFile(serviceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(data, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account: %w", err)
	}

	client := config.Client(ctx)

	service, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %w", err)
	}

	return &Uploader{service: service}, nil
}

// Metadata describes the listing for an uploaded dub.
type Metadata struct {
	Title       string
	Description string
	Tags        []string
	CategoryID  string
}

// UploadDub uploads a finished dubbed video as unlisted so owners can
// review the dub before making it public.
func (u *Uploader) UploadDub(videoPath string, metadata Metadata) (string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat video file: %w", err)
	}

	log.Printf("📤 Uploading: %s (%.2f MB)", videoPath, float64(fileInfo.Size())/(1024*1024))

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       metadata.Title,
			Description: metadata.Description,
			Tags:        metadata.Tags,
			CategoryId:  metadata.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           "unlisted",
			SelfDeclaredMadeForKids: false,
		},
	}

	call := u.service.Videos.Insert([]string{"snippet", "status"}, video)
	call = call.Media(file)

	response, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload video: %w", err)
	}

	videoID := response.Id
	log.Printf("✅ Uploaded! https://youtube.com/watch?v=%s", videoID)

	return videoID, nil
}

// GenerateMetadata builds a listing for a dubbed video from its source
// name and target language.
func GenerateMetadata(sourceName, targetLanguage string) Metadata {
	language := translation.LanguageName(targetLanguage)

	title := fmt.Sprintf("%s (%s dub)", sourceName, language)
	if len(title) > 100 {
		title = title[:97] + "..."
	}

	description := fmt.Sprintf(
		"%s, dubbed into %s.\n\n"+
			"Voice track generated from the original audio.",
		sourceName,
		language,
	)

	return Metadata{
		Title:       title,
		Description: description,
		Tags:        []string{"dub", language, "translation"},
		CategoryID:  "27",
	}
}
