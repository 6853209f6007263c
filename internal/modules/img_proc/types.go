package img_proc

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/reusedev/autowriter-client/internal/modules/http_client"
)

// The result types mirror what the backend currently answers. The client never
// decodes them on its own: callers pick one and call Decode.

type UploadResult struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    *struct {
		URL string `json:"url"`
	} `json:"data"`
}

type DetectResult struct {
	Success            bool                `json:"success"`
	Message            string              `json:"message,omitempty"`
	ImgIndexKey        string              `json:"img_index_key"`
	SheetType          string              `json:"sheet_type"`
	OriginalImageID    string              `json:"original_image_id"`
	CorrectedImageID   string              `json:"corrected_image_id"`
	DrawedImageID      string              `json:"drawed_image_id"`
	WebTdtrData        jsoniter.RawMessage `json:"web_tdtr_data"`
	CorrectedTableInfo jsoniter.RawMessage `json:"corrected_table_info"`
}

// HwTableData is the filled table sent to gen_hw_image.
type HwTableData struct {
	Rows        int                `json:"rows"`
	Cols        int                `json:"cols"`
	TdtrCells   [][]map[string]any `json:"tdtr_cells"`
	ImgIndexKey string             `json:"img_index_key"`
}

type HwImageResult struct {
	Success            bool   `json:"success"`
	ImgIndexKey        string `json:"img_index_key"`
	HandwritingImageID string `json:"handwriting_image_id"`
}

func Decode[T any](body http_client.Body) (*T, error) {
	var ret T
	if err := body.Decode(&ret); err != nil {
		return nil, err
	}
	return &ret, nil
}
