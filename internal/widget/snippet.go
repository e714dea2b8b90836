package widget

// Snippet is the copy-pasteable embed script. It is self-installing and
// idempotent: a marker element guards against double injection, and every
// failure is contained so the host page's own error handlers never see it.
// Visitor messages are posted to the widget endpoint, which routes them
// through Client.Send.
const Snippet = `<!-- HealthCRM Chat Widget -->
<script>
(function () {
    'use strict';

    if (document.getElementById('healthcrm-chat-bubble')) return;

    try {
        var style = document.createElement('style');
        style.textContent = [
            '#healthcrm-chat-bubble{position:fixed;bottom:20px;right:20px;width:56px;height:56px;',
            'border-radius:50%;background:#128c7e;color:#fff;display:flex;align-items:center;',
            'justify-content:center;cursor:pointer;box-shadow:0 2px 8px rgba(0,0,0,.3);z-index:9998;}',
            '#healthcrm-chat-window{position:fixed;bottom:90px;right:20px;width:320px;height:420px;',
            'background:#fff;border-radius:8px;box-shadow:0 4px 16px rgba(0,0,0,.25);display:flex;',
            'flex-direction:column;overflow:hidden;z-index:9999;font-family:sans-serif;}',
            '#healthcrm-chat-window.hidden{display:none;}',
            '#healthcrm-chat-header{background:#128c7e;color:#fff;padding:12px;display:flex;',
            'justify-content:space-between;align-items:center;}',
            '#healthcrm-chat-body{flex:1;padding:12px;overflow-y:auto;background:#f5f5f5;}',
            '.healthcrm-chat-message{margin-bottom:8px;padding:8px 12px;border-radius:12px;',
            'background:#fff;max-width:80%;font-size:14px;}',
            '.healthcrm-chat-message.user-sent{background:#dcf8c6;margin-left:auto;}',
            '#healthcrm-chat-footer{display:flex;border-top:1px solid #ddd;}',
            '#healthcrm-chat-input{flex:1;border:0;padding:10px;font-size:14px;outline:none;}',
            '#healthcrm-chat-send{border:0;background:#128c7e;color:#fff;padding:0 16px;cursor:pointer;}'
        ].join('');
        document.head.appendChild(style);

        var bubble = document.createElement('div');
        bubble.id = 'healthcrm-chat-bubble';
        bubble.textContent = '💬';

        var win = document.createElement('div');
        win.id = 'healthcrm-chat-window';
        win.className = 'hidden';
        win.innerHTML =
            '<div id="healthcrm-chat-header"><span>Chat with us</span>' +
            '<button id="healthcrm-chat-close">&times;</button></div>' +
            '<div id="healthcrm-chat-body">' +
            '<div class="healthcrm-chat-message">Hello! 👋 How can we help you with your health tourism journey today?</div>' +
            '</div>' +
            '<div id="healthcrm-chat-footer">' +
            '<input type="text" id="healthcrm-chat-input" placeholder="Type a message..." />' +
            '<button id="healthcrm-chat-send">Send</button></div>';

        document.body.appendChild(bubble);
        document.body.appendChild(win);

        var body = document.getElementById('healthcrm-chat-body');
        var input = document.getElementById('healthcrm-chat-input');

        bubble.addEventListener('click', function () { win.classList.toggle('hidden'); });
        document.getElementById('healthcrm-chat-close')
            .addEventListener('click', function () { win.classList.add('hidden'); });

        var send = function () {
            var text = input.value.trim();
            if (!text) return;

            var el = document.createElement('div');
            el.className = 'healthcrm-chat-message user-sent';
            el.textContent = text;
            body.appendChild(el);
            body.scrollTop = body.scrollHeight;
            input.value = '';

            try {
                fetch('/widget/messages', {
                    method: 'POST',
                    headers: { 'Content-Type': 'application/json' },
                    body: JSON.stringify({ text: text })
                }).catch(function (e) { console.error('HealthCRM Widget Error:', e); });
            } catch (e) {
                console.error('HealthCRM Widget Error:', e);
            }
        };

        document.getElementById('healthcrm-chat-send').addEventListener('click', send);
        input.addEventListener('keypress', function (e) {
            if (e.key === 'Enter') send();
        });
    } catch (e) {
        console.error('HealthCRM Widget Error:', e);
    }
})();
</script>`
