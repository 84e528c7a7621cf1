package web

// Chat page with a live feed of journaled turns.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Nova</title>
<style>
  :root { color-scheme: dark; }
  * { box-sizing: border-box; }
  body { margin: 0; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; background: #0f1117; color: #e6e6e6; }
  header { padding: 16px 24px; border-bottom: 1px solid #23262f; display: flex; align-items: center; gap: 12px; }
  header h1 { font-size: 18px; margin: 0; color: #7dd3fc; }
  header input { background: #171a22; border: 1px solid #2a2e39; color: inherit; padding: 6px 10px; border-radius: 6px; }
  main { display: grid; grid-template-columns: 2fr 1fr; gap: 16px; padding: 16px 24px; height: calc(100vh - 62px); }
  section { background: #151821; border: 1px solid #23262f; border-radius: 10px; display: flex; flex-direction: column; min-height: 0; }
  section h2 { font-size: 13px; text-transform: uppercase; letter-spacing: .08em; color: #8b93a7; margin: 0; padding: 12px 16px; border-bottom: 1px solid #23262f; }
  .log { flex: 1; overflow-y: auto; padding: 16px; }
  .msg { margin-bottom: 14px; white-space: pre-wrap; line-height: 1.45; }
  .msg.user { color: #a5b4fc; }
  .msg.assistant { color: #e6e6e6; }
  .msg.error { color: #fca5a5; }
  .turn { font-size: 12px; padding: 8px 0; border-bottom: 1px dashed #23262f; }
  .turn .meta { color: #8b93a7; }
  form { display: flex; gap: 8px; padding: 12px; border-top: 1px solid #23262f; }
  form textarea { flex: 1; resize: none; height: 52px; background: #0f1117; color: inherit; border: 1px solid #2a2e39; border-radius: 8px; padding: 8px; font: inherit; }
  form button { background: #0ea5e9; color: #fff; border: 0; border-radius: 8px; padding: 0 18px; cursor: pointer; }
  form button:disabled { opacity: .5; cursor: default; }
  @media (max-width: 900px) { main { grid-template-columns: 1fr; } }
</style>
</head>
<body>
<header>
  <h1>Nova</h1>
  <label>user <input id="username" value="guest"></label>
</header>
<main>
  <section>
    <h2>Chat</h2>
    <div id="log" class="log"></div>
    <form id="chat">
      <textarea id="message" placeholder="Ask about a coin, a date, or send a strategy..."></textarea>
      <button id="send" type="submit">Send</button>
    </form>
  </section>
  <section>
    <h2>Recent turns</h2>
    <div id="turns" class="log"></div>
  </section>
</main>
<script>
const log = document.getElementById('log');
const turns = document.getElementById('turns');
const form = document.getElementById('chat');
const input = document.getElementById('message');
const send = document.getElementById('send');

function append(container, cls, text) {
  const el = document.createElement('div');
  el.className = cls;
  el.textContent = text;
  container.appendChild(el);
  container.scrollTop = container.scrollHeight;
  return el;
}

form.addEventListener('submit', async (e) => {
  e.preventDefault();
  const message = input.value.trim();
  if (!message) return;
  const username = document.getElementById('username').value.trim() || 'guest';
  append(log, 'msg user', message);
  input.value = '';
  send.disabled = true;
  try {
    const res = await fetch('/api/chat', {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify({username, message}),
    });
    const body = await res.json();
    if (body.response) {
      append(log, res.ok ? 'msg assistant' : 'msg error', body.response);
    } else {
      append(log, 'msg error', body.error || 'request failed');
    }
  } catch (err) {
    append(log, 'msg error', String(err));
  } finally {
    send.disabled = false;
  }
});

input.addEventListener('keydown', (e) => {
  if (e.key === 'Enter' && !e.shiftKey) {
    e.preventDefault();
    form.requestSubmit();
  }
});

const stream = new EventSource('/api/turns/stream');
stream.addEventListener('turn', (e) => {
  const t = JSON.parse(e.data);
  const el = document.createElement('div');
  el.className = 'turn';
  const meta = document.createElement('div');
  meta.className = 'meta';
  meta.textContent = new Date(t.ts).toLocaleString() + ' · ' + t.username + ' · ' + t.intent + (t.coin ? ' · ' + t.coin : '');
  const req = document.createElement('div');
  req.textContent = t.request;
  el.appendChild(meta);
  el.appendChild(req);
  turns.prepend(el);
});
</script>
</body>
</html>
`
