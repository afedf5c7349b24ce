package render

import "html/template"

var templates = template.Must(template.New("render").Parse(`
{{define "message"}}<div class="text-center py-4">{{.}}</div>{{end}}

{{define "spinner"}}<div class="text-center py-4"><div class="inline-block w-8 h-8 border-4 border-white border-t-transparent rounded-full animate-spin"></div><p class="mt-2">{{.}}</p></div>{{end}}

{{define "eta-table"}}<div class="bg-white rounded-lg shadow-lg overflow-hidden flex flex-col">
<div class="bg-[#4052b6] text-white p-4 flex items-center space-x-2 sticky top-0 z-10"><span class="text-2xl">⏰</span><h2 class="text-xl font-bold">ETA Table</h2></div>
<div class="overflow-auto max-h-[300px] custom-scrollbar">
<table class="w-full">
<thead class="bg-white sticky top-0 shadow-sm z-10"><tr class="text-left border-b"><th class="p-3">Tàu</th><th class="p-3">Tuyến</th><th class="p-3">Vị trí</th><th class="p-3">ETA</th><th class="p-3">Delay</th><th class="p-3">Status</th></tr></thead>
<tbody class="bg-white">
{{- range .}}
<tr class="{{if .Even}}bg-white{{else}}bg-gray-50{{end}} border-b hover:bg-blue-50" data-ship="{{.Ship}}">
<td class="p-3"><div class="font-medium truncate">{{.Ship}}</div></td>
<td class="p-3"><span class="truncate">{{.From}}</span> <span>→</span> <span class="truncate">{{.To}}</span></td>
<td class="p-3">{{if .HasPos}}<div class="text-gray-600 flex flex-col"><span title="Vĩ độ">{{.Lat}}°N</span><span title="Kinh độ">{{.Lng}}°E</span></div>{{else}}<span class="text-gray-400">N/A</span>{{end}}</td>
<td class="p-3"><div class="whitespace-nowrap">{{.ETA}}</div></td>
<td class="p-3"><div class="whitespace-nowrap">{{if .Late}}<span class="text-orange-500">+{{.Hours}}h</span>{{else}}<span class="text-green-600">On time</span>{{end}}</div></td>
<td class="p-3"><span class="px-2 py-0.5 rounded-full text-sm {{.Status.Class}} whitespace-nowrap" data-level="{{.Status.Level}}">{{.Status.Text}}</span></td>
</tr>
{{- end}}
</tbody>
</table>
</div>
</div>{{end}}

{{define "port-list"}}<div class="text-white p-4"><h2 class="text-xl font-semibold flex items-center"><span class="mr-2">🚢</span>Thông tin cảng</h2></div>
<div class="max-h-[400px] overflow-y-auto custom-scrollbar"><div class="divide-y divide-gray-200">
{{- range .}}
<div class="p-4 bg-white m-2 rounded-lg cursor-pointer port-card" data-port-id="{{.CardID}}">
<h3 class="font-semibold text-lg mb-2 text-gray-800">{{.Name}}</h3>
<div class="text-sm space-y-2">
<div class="flex items-center"><span class="font-medium text-gray-600 w-20">Vị trí:</span> <span class="text-gray-800">{{.Lat}}°N, {{.Lng}}°E</span></div>
<div class="flex items-center"><span class="font-medium text-gray-600 w-20">Quốc gia:</span> <span class="text-gray-800">{{.Country}}</span></div>
<div class="flex items-center"><span class="font-medium text-gray-600 w-20">Trạng thái:</span> <span class="px-2 py-0.5 rounded-full text-xs font-medium {{.Status.Badge}}">{{.Status.Label}}</span></div>
</div>
</div>
{{- end}}
</div></div>{{end}}

{{define "port-detail"}}<h2 class="text-xl font-bold mb-4">🚢 Thông tin Cảng</h2>
<div class="space-y-4">
<div class="border-b border-blue-400 pb-2"><div class="font-medium">Số tàu đang neo đậu:</div><div class="text-2xl font-bold">{{.DockedShips}}</div></div>
<div class="border-b border-blue-400 pb-2"><div class="font-medium">Công suất sử dụng:</div><div class="text-lg">{{.Capacity}}% <span class="text-sm">({{.AvailableSlots}} chỗ trống)</span></div></div>
<div class="border-b border-blue-400 pb-2"><div class="font-medium">Thời gian chờ trung bình:</div><div class="text-lg">{{.Waiting}}</div></div>
<div><div class="font-medium">Trạng thái hoạt động:</div><div class="flex items-center mt-1"><span class="w-3 h-3 rounded-full {{.Status.Dot}} mr-2"></span><span class="{{.Status.Text}} font-medium">{{.Status.Label}}</span></div></div>
</div>{{end}}

{{define "alert-list"}}
{{- range .}}
<div class="alert-item"><div class="flex items-start gap-4">
<div class="alert-icon {{.Style.IconBg}}">{{.Style.Emoji}}</div>
<div class="flex-1">
<div class="flex items-center justify-between mb-2"><p class="alert-message">{{.Message}}</p><span class="alert-status {{.Style.Badge}}">{{.Status}}</span></div>
<p class="alert-time">{{.Where}}</p>
</div>
</div></div>
{{- end}}
{{end}}
`))
