package scan

import "errors"

// ErrImageRequired は画像が指定されていない場合に返却されます。パイプラインは実行されません。
var ErrImageRequired = errors.New("scan: image is required")
